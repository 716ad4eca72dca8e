package tools

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// catalog is the fixed, closed set of tools. The dispatcher rejects every
// name outside it.
var catalog = []Spec{
	{
		Name:        "get_events",
		Description: "Holt Kalender-Events. range: today, tomorrow, week oder date (dann date im Format YYYY-MM-DD angeben).",
		Parameters: objectSchema(map[string]any{
			"range": map[string]any{
				"type":        "string",
				"enum":        []string{"today", "tomorrow", "week", "date"},
				"description": "Welcher Zeitraum abgefragt wird",
			},
			"date": stringProp("Datum im Format YYYY-MM-DD, nur bei range=date"),
		}, "range"),
	},
	{
		Name:        "create_event",
		Description: "Erstellt einen neuen Kalender-Termin. start/end im Format YYYY-MM-DDTHH:MM.",
		Parameters: objectSchema(map[string]any{
			"title":       stringProp("Titel des Termins"),
			"start":       stringProp("Startzeit im Format YYYY-MM-DDTHH:MM"),
			"end":         stringProp("Endzeit im Format YYYY-MM-DDTHH:MM, optional"),
			"attendees":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Teilnehmer, optional"},
			"location":    stringProp("Ort, optional"),
			"description": stringProp("Beschreibung, optional"),
		}, "title", "start"),
		Mutating: true,
	},
	{
		Name:        "search_contacts",
		Description: "Sucht Kontakte nach Name, Email oder Telefonnummer.",
		Parameters: objectSchema(map[string]any{
			"query": stringProp("Suchbegriff"),
		}, "query"),
	},
	{
		Name:        "add_fact",
		Description: "Merkt sich einen Fakt über einen Kontakt, z.B. subject=Maria, content=mag Wandern.",
		Parameters: objectSchema(map[string]any{
			"subject": stringProp("Name der Person"),
			"content": stringProp("Der Fakt"),
		}, "subject", "content"),
		Mutating: true,
	},
	{
		Name:        "list_facts",
		Description: "Listet gespeicherte Fakten, optional gefiltert nach Person.",
		Parameters: objectSchema(map[string]any{
			"subject": stringProp("Name der Person, optional"),
		}),
	},
	{
		Name:        "delete_fact",
		Description: "Löscht einen gespeicherten Fakt anhand seiner ID (siehe list_facts).",
		Parameters: objectSchema(map[string]any{
			"id": intProp("ID des Fakts"),
		}, "id"),
		Mutating: true,
	},
	{
		Name:        "create_reminder",
		Description: "Erstellt eine Erinnerung. remind_at im Format YYYY-MM-DDTHH:MM, lokale Zeit.",
		Parameters: objectSchema(map[string]any{
			"message":   stringProp("Erinnerungstext"),
			"remind_at": stringProp("Fälligkeitszeit im Format YYYY-MM-DDTHH:MM"),
		}, "message", "remind_at"),
		Mutating: true,
	},
	{
		Name:        "list_reminders",
		Description: "Listet alle offenen Erinnerungen.",
		Parameters:  objectSchema(map[string]any{}),
	},
	{
		Name:        "delete_reminder",
		Description: "Löscht eine Erinnerung anhand ihrer ID (siehe list_reminders).",
		Parameters: objectSchema(map[string]any{
			"id": intProp("ID der Erinnerung"),
		}, "id"),
		Mutating: true,
	},
}
