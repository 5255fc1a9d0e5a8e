package doctor

import (
	"context"
	"os"
	"time"
)

// lookupEnvFunc reads environment variables.
// Package-level variable to allow test overrides.
var lookupEnvFunc = os.LookupEnv

// OracleCheck verifies the Gemini settings needed for voice commands.
type OracleCheck struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewOracleCheck creates a new oracle check. apiKey is the configured key;
// GEMINI_API_KEY is consulted when it is empty.
func NewOracleCheck(apiKey, model string, timeout time.Duration) *OracleCheck {
	return &OracleCheck{apiKey: apiKey, model: model, timeout: timeout}
}

func (c *OracleCheck) Name() string {
	return "Oracle"
}

func (c *OracleCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch {
	case c.apiKey != "":
		result.Items = append(result.Items, CheckItem{
			Label:  "api key",
			Status: StatusPass,
			Detail: "configured",
		})
	case envSet("GEMINI_API_KEY"):
		result.Items = append(result.Items, CheckItem{
			Label:  "api key",
			Status: StatusPass,
			Detail: "from GEMINI_API_KEY",
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "api key",
			Status: StatusFail,
			Detail: "set oracle.api_key or GEMINI_API_KEY",
		})
	}

	if c.model == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "model",
			Status: StatusFail,
			Detail: "no model configured",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "model",
			Status: StatusPass,
			Detail: c.model,
		})
	}

	if c.timeout < 5*time.Second {
		result.Items = append(result.Items, CheckItem{
			Label:  "voice timeout",
			Status: StatusWarn,
			Detail: c.timeout.String() + " is likely too short for audio requests",
		})
	}

	return result
}

func envSet(key string) bool {
	v, ok := lookupEnvFunc(key)
	return ok && v != ""
}
