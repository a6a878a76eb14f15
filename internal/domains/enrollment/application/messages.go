package application

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

const (
	confirmationSubject = "Your recruitment form has been received"
	reminderSubject     = "Reminder: your training starts soon"
)

var (
	confirmationTemplate = template.Must(template.New("confirmation").Parse(
		`Hello {{.FullName}},

thank you for submitting the recruitment form. We will contact you about the training you selected.
Preferred cities: {{range $i, $c := .Cities}}{{if $i}}, {{end}}{{$c}}{{end}}
`))
	reminderTemplate = template.Must(template.New("reminder").Parse(
		`Hello {{.FullName}},

this is a reminder about your training in {{.City}} ({{.Address}}).
It starts on {{.Start}} and ends at {{.End}}.
`))
)

type confirmationData struct {
	FullName string
	Cities   []string
}

type reminderData struct {
	FullName string
	City     string
	Address  string
	Start    string
	End      string
}

func renderConfirmation(form domain.SubmitRecruitmentForm) (domain.EmailMessage, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, confirmationData{
		FullName: form.FullName,
		Cities:   form.PreferredLecturingCities,
	}); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render confirmation: %w", err)
	}
	return domain.EmailMessage{Recipient: form.Email, Subject: confirmationSubject, Body: body.String()}, nil
}

func renderReminder(state domain.State, training domain.Training, loc *time.Location) (domain.EmailMessage, error) {
	if loc == nil {
		loc = time.UTC
	}
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, reminderData{
		FullName: state.FullName,
		City:     training.City,
		Address:  training.Address,
		Start:    training.StartAt.In(loc).Format("2006-01-02 15:04"),
		End:      training.EndAt.In(loc).Format("15:04"),
	}); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render reminder: %w", err)
	}
	return domain.EmailMessage{Recipient: state.Email, Subject: reminderSubject, Body: body.String()}, nil
}
