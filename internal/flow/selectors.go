// File: internal/flow/selectors.go
package flow

// Selectors is the externally-supplied table of UI hooks the flow drives.
// These track the marketplace's markup and rot without notice; keeping them
// in one replaceable value means a layout change is a data update, not an
// engine change.
type Selectors struct {
	// Sign-in page.
	CaptchaIndicator string
	EmailField       string
	ContinueButton   string
	PasswordField    string
	SignInButton     string

	// Prelist page, per item.
	KeywordBox           string
	KeywordSearchButton  string
	ContinueWithoutMatch string
	ConditionButton      string
	TitleField           string
	AddPhotosButton      string
	PhotoFileInput       string
}

// DefaultSelectors returns the table for the current eBay prelist layout.
func DefaultSelectors() Selectors {
	return Selectors{
		CaptchaIndicator: "#captcha_form, iframe[src*='captcha'], .g-recaptcha",
		EmailField:       "#userid",
		ContinueButton:   "#signin-continue-btn",
		PasswordField:    "#pass",
		SignInButton:     "#sgnBt",

		KeywordBox:           "input[id$='@keyword-@box-@input-textbox']",
		KeywordSearchButton:  ".keyword-suggestion__button",
		ContinueWithoutMatch: ".prelist-radix__next-action",
		ConditionButton:      "button.condition-button__selected[aria-pressed='true']",
		TitleField:           "input[id$='se-textbox']",
		AddPhotosButton:      ".uploader-ui-ux__add-photos",
		PhotoFileInput:       "input[type='file']",
	}
}
