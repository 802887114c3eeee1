package unit

const (
	// https://en.wikipedia.org/wiki/Kilobyte
	Byte     = 1
	Kilobyte = 1000 * Byte
	Megabyte = 1000 * Kilobyte
	Kibibyte = 1024 * Byte
	Mebibyte = 1024 * Kibibyte
)

const (
	BitPerSecond     = 1
	KilobitPerSecond = 1000 * BitPerSecond
)
