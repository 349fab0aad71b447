package model

// Supported analysis models.
const (
	ModelGeminiFlash = "gemini-2.0-flash"
	ModelGeminiPro   = "gemini-1.5-pro"
)

// AppSettings holds the user-editable knobs sent with every analysis request.
type AppSettings struct {
	Model       string  `json:"model" yaml:"model" validate:"required,oneof=gemini-2.0-flash gemini-1.5-pro"`
	SearchDepth int     `json:"searchDepth" yaml:"search_depth" validate:"min=1,max=10"`
	Creativity  float64 `json:"creativity" yaml:"creativity" validate:"min=0,max=1"`
}

// DefaultSettings returns the settings a fresh client starts with.
func DefaultSettings() AppSettings {
	return AppSettings{
		Model:       ModelGeminiFlash,
		SearchDepth: 3,
		Creativity:  0.1,
	}
}

// Validate checks the settings ranges.
func (s AppSettings) Validate() error {
	return Validate(s)
}
