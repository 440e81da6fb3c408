package chathub

import (
	"fmt"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
)

// Tipos de quadros aceitos do cidadão.
const (
	EvComplaint  = "complaint"
	EvDetails    = "details"
	EvSatisfied  = "satisfied"
	EvMediator   = "mediator"
	EvMessage    = "message"
	EvEndChat    = "end_chat"
	EvContact    = "contact"
	EvRetry      = "retry_finalize"
	EvOpenSurvey = "open_survey"
	EvSurvey     = "survey"
	EvClose      = "close"
)

// Inbound é um quadro recebido da interface. Os campos usados dependem do
// tipo; os demais ficam zerados.
type Inbound struct {
	Type string `json:"type"`

	Description string   `json:"description,omitempty"`
	Photos      []string `json:"photos,omitempty"`
	Videos      []string `json:"videos,omitempty"`
	Location    string   `json:"location,omitempty"`

	Text string `json:"text,omitempty"`

	Method  string `json:"method,omitempty"`
	Contact string `json:"contact,omitempty"`

	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Dispatch traduz o quadro no evento correspondente da sessão.
func Dispatch(s *intake.Session, in Inbound) error {
	switch in.Type {
	case EvComplaint:
		return s.SubmitComplaint(in.Description, in.Photos, in.Videos, in.Location)
	case EvDetails:
		_, err := s.ToggleDetails()
		return err
	case EvSatisfied:
		return s.ChooseSatisfied()
	case EvMediator:
		return s.ChooseMediator()
	case EvMessage:
		return s.SendMessage(in.Text)
	case EvEndChat:
		return s.EndChat()
	case EvContact:
		return s.SubmitContactPreference(in.Method, in.Contact)
	case EvRetry:
		return s.RetryFinalize()
	case EvOpenSurvey:
		return s.OpenSurvey()
	case EvSurvey:
		return s.SubmitSurvey(in.Rating, in.Comment)
	case EvClose:
		s.Close()
		return nil
	default:
		return fmt.Errorf("evento desconhecido: %q", in.Type)
	}
}
