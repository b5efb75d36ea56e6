package prompt

// Templates holds the fixed wording for one language. The Revision and
// Synthesis tables map a mode to the instruction block placed before the
// user's content; the function receives the caller's instruction, which only
// custom modes use.
type Templates struct {
	Revision  map[RevisionMode]func(instruction string) string
	Synthesis map[SynthesisMode]func(instruction string) string

	// DocumentHeader takes the 1-based position, TitleLine the title.
	DocumentHeader string
	TitleLine      string
	ContentLabel   string
}

const (
	enTextMarker = "\n\nText:\n"

	enLight = "Correct the following text for grammar, spelling and punctuation errors. " +
		"Preserve the original meaning and style. " +
		"Reply only with the corrected text, without any additional comments or introductions."
	enDeep = "Rewrite the following text, improving its structure, style and flow. Fix any errors. " +
		"The goal is a clearer and more professional text. " +
		"Reply only with the revised text, without any additional comments or introductions."
	enCustomSuffix = "\nReply only with the result of applying the instruction to the text below, " +
		"without any additional comments or introductions."

	enPlainText = "\n\nReturn *only* the plain text of the result, without any Markdown formatting, " +
		"code fences (e.g. ```), headings, bullet points (unless it is a bulleted summary) " +
		"or additional explanations."
	enCoherent = "Analyze the documents below and write one coherent text that unifies their main ideas and information. " +
		"Keep a logical flow and move smoothly between the topics of the different documents."
	enSummary = "Analyze the documents below and write a concise summary (for example a bulleted list or short paragraphs) " +
		"that captures the most important information and key points from all documents."
	enDocumentsFollow       = "\n\nHere are the documents:\n\n"
	enCustomDocumentsFollow = "\n\nHere are the documents the instruction refers to:\n\n"
)

// English is the default template set.
var English = &Templates{
	Revision: map[RevisionMode]func(string) string{
		RevisionLight:  func(string) string { return enLight + enTextMarker },
		RevisionDeep:   func(string) string { return enDeep + enTextMarker },
		RevisionCustom: func(in string) string { return in + enCustomSuffix + enTextMarker },
	},
	Synthesis: map[SynthesisMode]func(string) string{
		SynthesisCoherent: func(string) string { return enCoherent + enPlainText + enDocumentsFollow },
		SynthesisSummary:  func(string) string { return enSummary + enPlainText + enDocumentsFollow },
		SynthesisCustom:   func(in string) string { return in + enPlainText + enCustomDocumentsFollow },
	},
	DocumentHeader: "--- Document %d ---\n",
	TitleLine:      "Title: %s\n",
	ContentLabel:   "Content:\n",
}

const (
	plTextMarker = "\n\nTekst:\n"

	plLight = "Popraw poniższy tekst pod kątem błędów gramatycznych, ortograficznych i interpunkcyjnych. " +
		"Zachowaj oryginalny sens i styl. " +
		"Odpowiedz tylko zredagowanym tekstem, bez żadnych dodatkowych komentarzy czy wstępów."
	plDeep = "Przeredaguj poniższy tekst, poprawiając jego strukturę, styl i płynność. Popraw wszelkie błędy. " +
		"Celem jest uzyskanie bardziej klarownego i profesjonalnego tekstu. " +
		"Odpowiedz tylko zredagowanym tekstem, bez żadnych dodatkowych komentarzy czy wstępów."
	plCustomSuffix = "\nOdpowiedz tylko wynikiem działania polecenia na poniższym tekście, " +
		"bez żadnych dodatkowych komentarzy czy wstępów."

	plPlainText = "\n\nZwróć *wyłącznie* czysty tekst wyniku, bez żadnego formatowania Markdown, " +
		"znaczników kodu (np. ```), nagłówków, punktorów (chyba, że jest to podsumowanie w punktach) " +
		"ani dodatkowych wyjaśnień."
	plCoherent = "Przeanalizuj poniższe notatki i stwórz jeden spójny tekst, który łączy ich główne myśli i informacje. " +
		"Zachowaj logiczny przepływ i postaraj się płynnie przejść między tematami z różnych notatek."
	plSummary = "Przeanalizuj poniższe notatki i stwórz zwięzłe podsumowanie (np. w formie listy punktowanej lub krótkich akapitów), " +
		"które oddaje najważniejsze informacje i kluczowe punkty ze wszystkich notatek."
	plDocumentsFollow       = "\n\nOto notatki:\n\n"
	plCustomDocumentsFollow = "\n\nOto notatki, do których odnosi się polecenie:\n\n"
)

// Polish reproduces the wording the notebook app shipped with.
var Polish = &Templates{
	Revision: map[RevisionMode]func(string) string{
		RevisionLight:  func(string) string { return plLight + plTextMarker },
		RevisionDeep:   func(string) string { return plDeep + plTextMarker },
		RevisionCustom: func(in string) string { return in + plCustomSuffix + plTextMarker },
	},
	Synthesis: map[SynthesisMode]func(string) string{
		SynthesisCoherent: func(string) string { return plCoherent + plPlainText + plDocumentsFollow },
		SynthesisSummary:  func(string) string { return plSummary + plPlainText + plDocumentsFollow },
		SynthesisCustom:   func(in string) string { return in + plPlainText + plCustomDocumentsFollow },
	},
	DocumentHeader: "--- Notatka %d ---\n",
	TitleLine:      "Tytuł: %s\n",
	ContentLabel:   "Treść:\n",
}

var templatesByLanguage = map[string]*Templates{
	"":   English,
	"en": English,
	"pl": Polish,
}
