package fileio

// OpenFlag describes the intent a Handle was opened with, and its buffering
// behaviour. Flags combine with bitwise or.
type OpenFlag uint32

const (
	// The caller wants to read. Also doubles as "still open for read".
	ForRead OpenFlag = 1 << iota
	// The caller wants to write. Also doubles as "still open for write".
	ForWrite
	// Seek the backend to its end before each physical write.
	AppendMode
	// Writes accumulate in the buffer until it is full.
	FullyBuffered
	// Writes flush on newline.
	LineBuffered
	// No text translation. Only meaningful to the mode-string factory.
	Binary

	// Transient direction state. The buffer holds read-ahead.
	reading
	// Transient direction state. The buffer holds pending writes.
	writing
	// Sticky. The backend reported end of stream.
	reachedEOF
)

// Buffered requests buffering without choosing a flavour. Whether writes are
// fully or line buffered is decided on first buffered I/O: character devices
// that are terminals get line buffering, everything else full buffering.
const Buffered = FullyBuffered | LineBuffered

const openFlagMask = ForRead | ForWrite | AppendMode | Buffered | Binary

// The buffering bits alone. Zero means unbuffered, Buffered means not yet
// decided.
func (fl OpenFlag) buffering() OpenFlag {
	return fl & Buffered
}
