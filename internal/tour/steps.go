package tour

import "gradhub/assistant/internal/assistant"

// Role selects which tour script runs.
type Role string

const (
	RoleGraduate Role = "graduate"
	RoleEmployer Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleGraduate || r == RoleEmployer
}

// Step is one immutable tour entry. VoiceText, when set, is narrated instead
// of Text; Route, when set, navigates the client before the step is shown.
type Step struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Text      string          `json:"text"`
	VoiceText string          `json:"voice_text,omitempty"`
	State     assistant.State `json:"state"`
	Route     string          `json:"route,omitempty"`
}

// StepsForRole returns the built-in script for a role, in order.
func StepsForRole(role Role) []Step {
	switch role {
	case RoleGraduate:
		return graduateSteps
	case RoleEmployer:
		return employerSteps
	default:
		return nil
	}
}

var graduateSteps = []Step{
	{
		ID:    "welcome",
		Title: "Welcome to GradHub",
		Text:  "Hi! I'm your assistant. Let me show you around in a couple of minutes.",
		State: assistant.StateGreeting,
	},
	{
		ID:        "vacancies",
		Title:     "Find vacancies",
		Text:      "This is the vacancy board. Filter by city, salary and skills to narrow it down.",
		VoiceText: "Here is the vacancy board. Use the filters to find roles that match your skills.",
		State:     assistant.StatePointing,
		Route:     "/vacancies",
	},
	{
		ID:    "resume",
		Title: "Build your resume",
		Text:  "Fill in your resume here. Employers see it when you respond to a vacancy.",
		State: assistant.StatePointing,
		Route: "/resume",
	},
	{
		ID:    "calendar",
		Title: "Interview calendar",
		Text:  "Scheduled interviews land on this calendar so you never miss one.",
		State: assistant.StatePointing,
		Route: "/calendar",
	},
	{
		ID:    "profile",
		Title: "Your profile",
		Text:  "Tune notifications and account details here. That's the whole tour!",
		State: assistant.StateThinking,
		Route: "/profile",
	},
}

var employerSteps = []Step{
	{
		ID:    "welcome",
		Title: "Welcome to GradHub",
		Text:  "Hi! I'll walk you through posting roles and finding candidates.",
		State: assistant.StateGreeting,
	},
	{
		ID:        "post",
		Title:     "Post a vacancy",
		Text:      "Create and manage your vacancies from this screen.",
		VoiceText: "This is where you create a vacancy. A clear description attracts better candidates.",
		State:     assistant.StatePointing,
		Route:     "/vacancies",
	},
	{
		ID:    "candidates",
		Title: "Browse candidates",
		Text:  "Search graduate profiles by skills and respond to the ones that fit.",
		State: assistant.StatePointing,
		Route: "/candidates",
	},
	{
		ID:    "calendar",
		Title: "Interview calendar",
		Text:  "Interviews you schedule with candidates show up here.",
		State: assistant.StatePointing,
		Route: "/calendar",
	},
	{
		ID:    "profile",
		Title: "Company profile",
		Text:  "Keep your company page up to date. That's everything!",
		State: assistant.StateThinking,
		Route: "/profile",
	},
}
