package tools

import (
	"fmt"
	"strings"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/service/store"

	"github.com/elliotchance/pie/v2"
)

func formatEvent(event calendar.Event, loc *time.Location) string {
	var sb strings.Builder

	if event.AllDay {
		sb.WriteString("Ganztägig")
	} else {
		sb.WriteString(event.Start.In(loc).Format("02.01 15:04"))
	}

	sb.WriteString(" - ")
	sb.WriteString(event.Title)

	if event.Location != "" {
		sb.WriteString(" (")
		sb.WriteString(event.Location)
		sb.WriteString(")")
	}

	return sb.String()
}

func formatEvents(events []calendar.Event, loc *time.Location) string {
	if len(events) == 0 {
		return "Keine Termine gefunden."
	}

	lines := pie.Map(events, func(e calendar.Event) string {
		return formatEvent(e, loc)
	})

	return strings.Join(lines, "\n")
}

func formatContacts(query string, contacts []contactsdir.Contact) string {
	if len(contacts) == 0 {
		return fmt.Sprintf("Keine Kontakte gefunden für '%s'.", query)
	}

	lines := pie.Map(contacts, func(c contactsdir.Contact) string {
		line := fmt.Sprintf("[%d] %s", c.ID, c.Name)

		if c.Organization != "" {
			line += fmt.Sprintf(" (%s)", c.Organization)
		}
		if len(c.Phones) > 0 {
			line += ", Tel: " + c.Phones[0]
		}
		if len(c.Emails) > 0 {
			line += ", Email: " + c.Emails[0]
		}

		return line
	})

	return strings.Join(lines, "\n")
}

func formatFacts(facts []store.Fact) string {
	if len(facts) == 0 {
		return "Keine Fakten gespeichert."
	}

	lines := pie.Map(facts, func(f store.Fact) string {
		return fmt.Sprintf("[%d] %s: %s", f.ID, f.Subject, f.Content)
	})

	return strings.Join(lines, "\n")
}

func formatReminders(reminders []store.Reminder, loc *time.Location) string {
	if len(reminders) == 0 {
		return "Keine offenen Erinnerungen."
	}

	lines := pie.Map(reminders, func(r store.Reminder) string {
		return fmt.Sprintf("[%d] %s – %s", r.ID, r.RemindAt.In(loc).Format("02.01.2006 15:04"), r.Message)
	})

	return strings.Join(lines, "\n")
}
