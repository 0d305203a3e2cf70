package output

// Formatter formats a Result into bytes for output.
// buf is a reusable buffer; implementations append to it and return the result.
type Formatter interface {
	Format(buf []byte, result Result) []byte
}
