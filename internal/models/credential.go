package models

import "strings"

// Credential is a matched identity that grants admin privileges. The set
// is closed: labels outside it never reach the privilege table.
type Credential string

const (
	CredentialSoumyadeeptaRoy     Credential = "SOUMYADEEPTA ROY"
	CredentialRitankarChakraborty Credential = "RITANKAR CHAKRABORTY"
	CredentialSatyakiHalder       Credential = "SATYAKI HALDER"
	CredentialDianDey             Credential = "DIAN DEY"
	CredentialIbhanChakraborty    Credential = "IBHAN CHAKRABORTY"
)

// Credentials lists the allow-list in a stable order.
var Credentials = []Credential{
	CredentialSoumyadeeptaRoy,
	CredentialRitankarChakraborty,
	CredentialSatyakiHalder,
	CredentialDianDey,
	CredentialIbhanChakraborty,
}

// ParseCredential maps a free-text label onto the allow-list. Matching
// ignores case and surrounding blanks.
func ParseCredential(label string) (Credential, bool) {
	l := strings.ToUpper(strings.TrimSpace(label))
	for _, c := range Credentials {
		if string(c) == l {
			return c, true
		}
	}
	return "", false
}
