package naming

// Purpose is the closed set of "what this resource is for" tokens. Predefined
// purposes cover everything the deployment layer builds; CustomPurpose is the
// escape hatch for one-offs and is validated at construction so an invalid
// token can never reach ComposeName.
type Purpose struct {
	token string
}

var (
	PurposeMain          = Purpose{"main"}
	PurposeService       = Purpose{"service"}
	PurposeTaskExecution = Purpose{"task-exec"}
	PurposeTask          = Purpose{"task"}
	PurposeArtifacts     = Purpose{"artifacts"}
	PurposeLogs          = Purpose{"logs"}
	PurposeIngress       = Purpose{"ingress"}
	PurposeData          = Purpose{"data"}
	PurposeCache         = Purpose{"cache"}
	PurposeAudit         = Purpose{"audit"}
	PurposeBackup        = Purpose{"backup"}
)

// CustomPurpose builds a purpose from an arbitrary token. The token must be
// lowercase alphanumerics and hyphens, non-empty, with no leading or trailing
// hyphen.
func CustomPurpose(token string) (Purpose, error) {
	if err := checkToken(token); err != nil {
		return Purpose{}, err
	}
	return Purpose{token: token}, nil
}

// PurposeFromString resolves a token to a predefined purpose, falling back to
// CustomPurpose validation.
func PurposeFromString(token string) (Purpose, error) {
	for _, p := range wellKnownPurposes() {
		if p.token == token {
			return p, nil
		}
	}
	return CustomPurpose(token)
}

// Token returns the purpose token embedded in composed names.
func (p Purpose) Token() string {
	return p.token
}

// IsZero reports whether the purpose was never set.
func (p Purpose) IsZero() bool {
	return p.token == ""
}

func (p Purpose) String() string {
	return p.token
}

func wellKnownPurposes() []Purpose {
	return []Purpose{
		PurposeMain, PurposeService, PurposeTaskExecution, PurposeTask,
		PurposeArtifacts, PurposeLogs, PurposeIngress, PurposeData,
		PurposeCache, PurposeAudit, PurposeBackup,
	}
}

func checkToken(token string) error {
	if token == "" {
		return &InvalidCharacterError{Name: token, Detail: "empty token"}
	}
	if token[0] == '-' || token[len(token)-1] == '-' {
		return &InvalidCharacterError{Name: token, Detail: "leading or trailing hyphen"}
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' {
			continue
		}
		return &InvalidCharacterError{
			Name:   token,
			Detail: "only lowercase alphanumerics and hyphens are allowed",
		}
	}
	return nil
}
