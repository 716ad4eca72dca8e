package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"luna/app/client/calendar"
	"luna/app/client/contactsdir"
	"luna/app/service/store"

	"github.com/elliotchance/pie/v2"
)

const welcomeReply = `Hallo! Ich bin Luna, deine Assistentin.

Schreib mir einfach, was du brauchst - Termine, Kontakte, Notizen, Erinnerungen.

Befehle:
/heute - Termine heute
/morgen - Termine morgen
/fakten - gespeicherte Notizen
/kontakt <Name> - Kontakt suchen
/kontakte - Kontakte synchronisieren
/clear - Verlauf löschen`

// handleCommand routes slash commands deterministically, without the
// reasoning capability. Unknown commands get a short hint.
func (s *Service) handleCommand(ctx context.Context, chatID int64, text string) string {
	fields := strings.Fields(text)
	command := fields[0]
	args := strings.TrimSpace(strings.TrimPrefix(text, command))

	switch command {
	case "/start":
		return welcomeReply
	case "/heute":
		return s.eventsReply(ctx, chatID, 0, "Termine heute")
	case "/morgen":
		return s.eventsReply(ctx, chatID, 1, "Termine morgen")
	case "/fakten":
		return s.factsReply(chatID)
	case "/kontakt":
		return s.contactReply(ctx, chatID, args)
	case "/kontakte":
		return s.syncReply(ctx, chatID)
	case "/clear":
		s.conv.Reset(chatID)
		return "Konversationsverlauf gelöscht!"
	default:
		return "Unbekannter Befehl. Schreib /start für eine Übersicht."
	}
}

func (s *Service) eventsReply(ctx context.Context, chatID int64, dayOffset int, header string) string {
	now := time.Now().In(s.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, dayOffset)

	events, err := s.calendar.ListEvents(ctx, day, day)
	if err != nil {
		slog.Error("Failed to list events", "chat_id", chatID, "error", err)
		return "Der Kalender ist gerade nicht erreichbar."
	}

	if len(events) == 0 {
		return header + ": keine."
	}

	lines := pie.Map(events, func(e calendar.Event) string {
		if e.AllDay {
			return "• Ganztägig: " + e.Title
		}

		line := "• " + e.Start.In(s.loc).Format("15:04") + ": " + e.Title
		if e.Location != "" {
			line += " (" + e.Location + ")"
		}

		return line
	})

	return header + ":\n" + strings.Join(lines, "\n")
}

func (s *Service) factsReply(chatID int64) string {
	facts, err := s.facts.ListFacts("")
	if err != nil {
		slog.Error("Failed to list facts", "chat_id", chatID, "error", err)
		return "Die Notizen sind gerade nicht erreichbar."
	}

	if len(facts) == 0 {
		return "Keine Notizen gespeichert."
	}

	lines := pie.Map(facts, func(f store.Fact) string {
		return fmt.Sprintf("• [%d] %s: %s", f.ID, f.Subject, f.Content)
	})

	return "Gespeicherte Notizen:\n" + strings.Join(lines, "\n")
}

func (s *Service) contactReply(ctx context.Context, chatID int64, query string) string {
	if query == "" {
		return "Bitte gib einen Namen an: /kontakt <Name>"
	}

	contacts, err := s.contacts.Search(ctx, query)
	if err != nil {
		slog.Error("Failed to search contacts", "chat_id", chatID, "error", err)
		return "Die Kontakte sind gerade nicht erreichbar."
	}

	if len(contacts) == 0 {
		return "Kein Kontakt gefunden für: " + query
	}

	lines := pie.Map(contacts, func(c contactsdir.Contact) string {
		line := "• " + c.Name

		if c.Organization != "" {
			line += " (" + c.Organization + ")"
		}

		if len(c.Phones) > 0 {
			line += "\n  Tel: " + strings.Join(c.Phones, ", ")
		}

		if len(c.Emails) > 0 {
			line += "\n  Email: " + strings.Join(c.Emails, ", ")
		}

		return line
	})

	return strings.Join(lines, "\n")
}

func (s *Service) syncReply(ctx context.Context, chatID int64) string {
	result, err := s.syncer.Sync(ctx)
	if err != nil {
		slog.Error("Failed to sync contacts", "chat_id", chatID, "error", err)
		return "Die Synchronisierung ist fehlgeschlagen."
	}

	return result
}
