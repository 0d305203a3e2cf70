// Package resolve turns a possibly relative path into a Descriptor: the
// canonical absolute path, its folder and file name, and the whole file
// content, released together by Descriptor.Close.
//
// Relative paths are only joined to a base directory when they start with an
// explicit relative marker ("./", ".\", "../" or "..\"). Every other path,
// including plain names such as "config.json", is resolved against the
// process working directory. This is a narrow rule for loading files next to
// the file that asked for them; it is not general path joining.
package resolve
