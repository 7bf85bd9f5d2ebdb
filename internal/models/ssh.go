package models

// SSHShutdownConfig holds SSH shutdown settings for the storage target.
type SSHShutdownConfig struct {
	Host          string
	Port          int
	Username      string
	PrivateKey    []byte // loaded from KeyPath
	KeyPath       string // path to the private key file
	ShutdownDelay int    // delay before shutdown (Linux: minutes, Windows: seconds)
	OS            string // "linux" (default) or "windows"
}

// SSHResult holds the result of an SSH operation.
type SSHResult struct {
	CommandRun bool
	Output     string
	Error      error
}
