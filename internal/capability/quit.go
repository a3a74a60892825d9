package capability

// QuitByte is the single-byte control message that ends a session.
const QuitByte = 'q'

// Quit treats a read consisting of exactly QuitByte as a shutdown
// request.  Any other chunk, including a longer one that starts with
// QuitByte, is plain data.
type Quit struct{}

// Interpret implements Capability.
func (Quit) Interpret(chunk []byte) Action {
	if len(chunk) == 1 && chunk[0] == QuitByte {
		return Shutdown
	}
	return Continue
}
