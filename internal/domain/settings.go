package domain

// HeaderSettings is the persisted header customization document. All fields are
// values, so copies never share state.
type HeaderSettings struct {
	Background Background `json:"background"`
	Logo       Logo       `json:"logo"`
	Colors     Colors     `json:"colors"`
}

type Background struct {
	Type      BackgroundType `json:"type"`
	Value     string         `json:"value"`
	ImageData string         `json:"imageData"`
}

type Logo struct {
	Enabled   bool   `json:"enabled"`
	ImageData string `json:"imageData"`
}

type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type BackgroundType string

const (
	BackgroundColor BackgroundType = "color"
	BackgroundImage BackgroundType = "image"
)

const (
	DefaultPrimaryColor   = "#667eea"
	DefaultSecondaryColor = "#764ba2"
)

const (
	KeyHeaderSettings = "headerCustomization"
	KeySignupData     = "signupData"
	KeyCurrentUser    = "currentUser"
	KeyContactInbox   = "contactMessages"
)

func DefaultHeaderSettings() HeaderSettings {
	return HeaderSettings{
		Background: Background{
			Type:  BackgroundColor,
			Value: DefaultPrimaryColor,
		},
		Colors: Colors{
			Primary:   DefaultPrimaryColor,
			Secondary: DefaultSecondaryColor,
		},
	}
}

// HeaderPreview is what the header renders for a given settings value.
type HeaderPreview struct {
	Custom          bool   `json:"custom"`
	Background      string `json:"background"`
	BackgroundImage string `json:"backgroundImage"`
	LogoVisible     bool   `json:"logoVisible"`
	LogoSrc         string `json:"logoSrc,omitempty"`
}
