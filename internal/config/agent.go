package config

import (
	"errors"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/examiner/pkg/settings"
)

const (
	EnvAgentProviderName = "EXAMINER_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "EXAMINER_AGENT_BASE_URL"
	EnvAgentToken        = "EXAMINER_AGENT_TOKEN"
	EnvAgentDeployment   = "EXAMINER_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "EXAMINER_AGENT_API_VERSION"
	EnvAgentAuthType     = "EXAMINER_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "EXAMINER_AGENT_MODEL_NAME"
)

// agentOptions maps provider option keys to the variables that set them.
var agentOptions = map[string]string{
	"token":       EnvAgentToken,
	"deployment":  EnvAgentDeployment,
	"api_version": EnvAgentAPIVersion,
	"auth_type":   EnvAgentAuthType,
}

// FinalizeAgent layers c over the go-agents defaults, applies EXAMINER_AGENT_*
// overrides, and checks the result names an agent, provider, and model.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	merged := gaconfig.DefaultAgentConfig()
	merged.Merge(c)
	*c = merged

	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = map[string]any{}
	}

	settings.Env(&c.Provider.Name, EnvAgentProviderName)
	settings.Env(&c.Provider.BaseURL, EnvAgentBaseURL)
	settings.Env(&c.Model.Name, EnvAgentModelName)
	for key, env := range agentOptions {
		if v := os.Getenv(env); v != "" {
			c.Provider.Options[key] = v
		}
	}

	switch {
	case c.Name == "":
		return errors.New("name required")
	case c.Provider.Name == "":
		return errors.New("provider name required")
	}
	return nil
}
