package entities

// Credential is an account/secret pair owned by the credential store.
// Transient credentials (e.g. read from the environment) are used for the
// current flow only and never written back to the store.
type Credential struct {
	Account   string
	Secret    string
	Transient bool
}

// CredentialRequest describes what an acquirer is asked to obtain.
// Account is a hint; acquirers that need a real username leave it empty.
type CredentialRequest struct {
	Protocol string
	Host     string
	Path     string
	Account  string
}
