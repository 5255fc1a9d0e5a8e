package initcmd

import (
	"context"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/doctor"
)

// InitCheck validates the file the wizard wrote.
type InitCheck struct {
	configPath string
	dataDir    string
}

// NewInitCheck creates a new init validation check.
func NewInitCheck(configPath, dataDir string) *InitCheck {
	return &InitCheck{configPath: configPath, dataDir: dataDir}
}

func (c *InitCheck) Name() string {
	return "Init Validation"
}

// Run loads the written config the way the CLI will on the next start, then
// reports whether the oracle is usable.
func (c *InitCheck) Run(ctx context.Context) doctor.Result {
	result := doctor.Result{Name: c.Name()}

	cfg, err := config.Load(c.configPath, c.dataDir)
	if err != nil {
		result.Items = append(result.Items, doctor.CheckItem{
			Label:  "Config file",
			Status: doctor.StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, doctor.CheckItem{
		Label:  "Config file",
		Status: doctor.StatusPass,
		Detail: c.configPath,
	})

	oracle := doctor.NewOracleCheck(cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Oracle.VoiceTimeout).Run(ctx)
	result.Items = append(result.Items, oracle.Items...)

	return result
}
