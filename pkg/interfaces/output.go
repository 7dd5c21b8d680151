package interfaces

// OutputFile is one rendered document. Path is slash separated and relative
// to the output root; paths are unique within a render result.
type OutputFile struct {
	Path string
	Text string
}
