// Package wizard implements the multi-step onboarding flow state machine:
// upload booking history, upload financials, segment generation, discount
// configuration, email campaign generation, launch. Transitions are gated
// by per-step completion predicates and every mutation is copy-on-write.
package wizard

// Step is the active step of the fixed wizard sequence, 1-based.
type Step int

const (
	StepUploadBooking Step = iota + 1
	StepUploadFinance
	StepSegmentation
	StepDiscounts
	StepEmailCampaign
	StepLaunch
)

// FirstStep and LastStep bound the sequence.
const (
	FirstStep = StepUploadBooking
	LastStep  = StepLaunch
)

var stepNames = map[Step]string{
	StepUploadBooking: "Upload Booking",
	StepUploadFinance: "Upload Finance",
	StepSegmentation:  "Segmentation",
	StepDiscounts:     "Discounts",
	StepEmailCampaign: "Email Campaign",
	StepLaunch:        "Launch",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is within the wizard sequence.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Files holds the uploaded source filenames. An empty name means the file
// has not been uploaded (or was removed) and gates the owning step.
type Files struct {
	BookingFile string `json:"bookingFile"`
	FinanceFile string `json:"financeFile"`
}

// State is a user's wizard position plus the completion signals the step
// gates depend on. It is a value type: Advance and Retreat return a new
// State and never mutate the receiver.
type State struct {
	Step               Step   `json:"step"`
	Files              Files  `json:"files"`
	SegmentsGenerated  bool   `json:"segments_generated"`
	DiscountsGenerated bool   `json:"discounts_generated"`
	Status             string `json:"status,omitempty"`
}

// NewState returns the initial wizard state at step 1.
func NewState() State {
	return State{Step: FirstStep}
}

// CanAdvance reports whether the current step's completion predicate holds
// and a next step exists.
func (s State) CanAdvance() bool {
	return s.Step < LastStep && s.stepComplete()
}

func (s State) stepComplete() bool {
	switch s.Step {
	case StepUploadBooking:
		return s.Files.BookingFile != ""
	case StepUploadFinance:
		return s.Files.FinanceFile != ""
	case StepSegmentation:
		return s.SegmentsGenerated
	default:
		return true
	}
}

// BlockReason explains why Advance is refused, or "" when it is not.
func (s State) BlockReason() string {
	if s.Step >= LastStep {
		return "already at the final step"
	}
	switch s.Step {
	case StepUploadBooking:
		if s.Files.BookingFile == "" {
			return "upload your booking history file first"
		}
	case StepUploadFinance:
		if s.Files.FinanceFile == "" {
			return "upload your finance file first"
		}
	case StepSegmentation:
		if !s.SegmentsGenerated {
			return "generate customer segments first"
		}
	}
	return ""
}

// Advance moves to the next step when the current step's gate passes.
// Returns the (possibly unchanged) state and whether a transition happened.
// A transition clears the transient status message.
func (s State) Advance() (State, bool) {
	if !s.CanAdvance() {
		return s, false
	}
	s.Step++
	s.Status = ""
	return s, true
}

// Retreat moves back one step unconditionally, except below step 1.
func (s State) Retreat() (State, bool) {
	if s.Step <= FirstStep {
		return s, false
	}
	s.Step--
	s.Status = ""
	return s, true
}

// RemoveFile clears an uploaded filename, re-gating the owning step.
func (s State) RemoveFile(step Step) State {
	switch step {
	case StepUploadBooking:
		s.Files.BookingFile = ""
	case StepUploadFinance:
		s.Files.FinanceFile = ""
	}
	return s
}
