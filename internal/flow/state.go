// File: internal/flow/state.go
package flow

// State is the observable position of the listing flow. Per-run states run
// strictly in order; the per-item states repeat for every task.
type State int32

const (
	StateInit State = iota
	StateSignedOut
	// StateCaptchaPending is the one suspension point that needs a human:
	// the machine blocks here until the operator acknowledges the challenge.
	StateCaptchaPending
	StateSignedIn
	StateOnPrelistPage
	StateSearching
	StateDisambiguating
	StateConditionSelected
	StateTitleEntered
	StatePhotoAttached
	StateItemDone
	StateComplete
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateSignedOut:         "signed_out",
	StateCaptchaPending:    "captcha_pending",
	StateSignedIn:          "signed_in",
	StateOnPrelistPage:     "on_prelist_page",
	StateSearching:         "searching",
	StateDisambiguating:    "disambiguating",
	StateConditionSelected: "condition_selected",
	StateTitleEntered:      "title_entered",
	StatePhotoAttached:     "photo_attached",
	StateItemDone:          "item_done",
	StateComplete:          "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
