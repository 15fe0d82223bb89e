package types

import (
	"fmt"
	"time"
)

type Language string

const (
	LanguageZH Language = "zh"
	LanguageEN Language = "en"
)

func ParseLanguage(s string) Language {
	if s == string(LanguageEN) {
		return LanguageEN
	}
	return LanguageZH
}

// Themes offered to travellers. Free text is accepted as well.
var Themes = []string{"历史人文", "自然风光", "美食探索", "文化体验", "家庭亲子"}

const (
	MinTripDays = 1
	MaxTripDays = 7
)

// SpecialNeeds are the traveller flags that add advisories to the prompt.
type SpecialNeeds struct {
	Elderly  bool `json:"elderly"`
	Children bool `json:"children"`
	Cooling  bool `json:"cooling"`
}

// PromptRequest carries everything the prompt assembler renders.
type PromptRequest struct {
	Days          int          `json:"days"`
	Budget        int          `json:"budget"`
	Theme         string       `json:"theme"`
	Needs         SpecialNeeds `json:"needs"`
	WeatherAdvice string       `json:"weather_advice"`
	Language      Language     `json:"language"`
}

func (r PromptRequest) Validate() error {
	if r.Days < MinTripDays || r.Days > MaxTripDays {
		return fmt.Errorf("%w: days must be between %d and %d, got %d", ErrInvalidRequest, MinTripDays, MaxTripDays, r.Days)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidRequest)
	}
	return nil
}

// ItineraryRequest is the end-user request for a generated travel plan.
type ItineraryRequest struct {
	Days     int          `json:"days"`
	Budget   int          `json:"budget"`
	Theme    string       `json:"theme"`
	Needs    SpecialNeeds `json:"needs"`
	City     string       `json:"city,omitempty"`
	Language Language     `json:"language,omitempty"`
}

func (r ItineraryRequest) PromptRequest(advice string) PromptRequest {
	return PromptRequest{
		Days:          r.Days,
		Budget:        r.Budget,
		Theme:         r.Theme,
		Needs:         r.Needs,
		WeatherAdvice: advice,
		Language:      r.Language,
	}
}

// PlanDay is one day of the rule-based plan derived from the forecast.
type PlanDay struct {
	Date       string   `json:"date"`
	Weekday    string   `json:"weekday"`
	Condition  string   `json:"condition"`
	Activities []string `json:"activities"`
}

type ItineraryResponse struct {
	Prompt        string    `json:"prompt"`
	WeatherAdvice string    `json:"weather_advice"`
	Forecast      *Forecast `json:"forecast"`
	Plan          []PlanDay `json:"plan"`
	Content       string    `json:"content,omitempty"`
	Model         string    `json:"model,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}
