package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"claudehub/internal/records"

	"github.com/sirupsen/logrus"
)

var ErrInvalidForm = errors.New("invalid form")

type FormSubmission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
}

func (f *FormSubmission) normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Company = strings.TrimSpace(f.Company)
	if f.Priority == "" {
		f.Priority = "medium"
	}
	if f.Category == "" {
		f.Category = "general"
	}
}

func (f *FormSubmission) validate() error {
	var missing []string
	if f.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if f.LastName == "" {
		missing = append(missing, "lastName")
	}
	if f.Email == "" {
		missing = append(missing, "email")
	} else if !strings.Contains(f.Email, "@") {
		return fmt.Errorf("%w: email is not valid", ErrInvalidForm)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidForm, strings.Join(missing, ", "))
	}
	return nil
}

// SubmitForm stores a contact form as a ticket owned by userID.
func (s *Service) SubmitForm(ctx context.Context, userID string, form FormSubmission) (*records.Ticket, error) {
	form.normalize()
	if err := form.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &records.Ticket{
		Name:        form.FirstName + " " + form.LastName,
		Initials:    initials(form.FirstName, form.LastName),
		Destination: form.Category,
		Place:       form.Company,
		Status:      form.Priority,
		Date:        now.Format("1/2/2006"),
		Time:        now.Format("3:04:05 PM"),
		UserID:      userID,
	}
	if err := s.records.InsertRow(ctx, records.TableTickets, ticket); err != nil {
		logrus.Errorf("Error saving form for user %s: %v", userID, err)
		return nil, err
	}

	logrus.Infof("Form submitted by user %s as ticket %s", userID, ticket.ID)
	return ticket, nil
}

func initials(first, last string) string {
	var b strings.Builder
	for _, name := range []string{first, last} {
		if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
