package response

import (
	"fmt"
	"strings"

	"manual-assistant-be/pkg/store"
)

// User-facing messages. The corpus and its users are Spanish-speaking, so
// these are fixed strings rather than LLM-generated text; routing messages
// must be instantaneous and deterministic.

// ConfirmCandidate asks the user to confirm a medium-confidence match.
func ConfirmCandidate(c *store.Candidate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("¿Te refieres al manual **%s**", c.DisplayName))
	if c.VersionLabel != "" {
		b.WriteString(fmt.Sprintf(" (versión %s)", c.VersionLabel))
	}
	b.WriteString("?\n\nRespondé **sí** para abrirlo, o escribí otra consulta para seguir buscando.")
	return b.String()
}

// DocumentOpened announces an auto-selected or confirmed document.
func DocumentOpened(c *store.Candidate) string {
	return fmt.Sprintf("📖 Abrí el manual **%s**. Preguntame lo que necesites; escribí *salir* para buscar otro manual.", c.DisplayName)
}

// AmbiguousCandidates lists the viable options when no single match wins.
func AmbiguousCandidates(candidates []store.Candidate) string {
	var b strings.Builder
	b.WriteString("Encontré varios manuales que podrían servir:\n\n")
	for i, c := range candidates {
		b.WriteString(fmt.Sprintf("%d. **%s**", i+1, c.DisplayName))
		if c.VersionLabel != "" {
			b.WriteString(fmt.Sprintf(" (versión %s)", c.VersionLabel))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nReformulá la consulta mencionando el manual que te interesa.")
	return b.String()
}

// NoMatch is the fallback when discovery finds nothing current.
func NoMatch() string {
	return "No encontré manuales vigentes que cubran ese tema. Probá con otras palabras, o consultá con sistemas si el manual debería existir."
}

// NothingInDocument reports an empty evidence set for the active document.
func NothingInDocument(displayName string) string {
	return fmt.Sprintf("No encontré nada sobre eso en **%s**. Podés preguntarme otra cosa de este manual, o escribir *salir* para buscar en otro.", displayName)
}

// SessionReset confirms a hard reset.
func SessionReset() string {
	return "🧹 Memoria reiniciada. Contame qué necesitás y busco el manual indicado."
}

// SuggestRephrase fires after several consecutive failed discoveries.
func SuggestRephrase() string {
	return "Llevamos varios intentos sin encontrar un manual. Probá describir la pantalla o el módulo con otras palabras (por ejemplo: \"facturación\", \"sueldos\", \"stock\")."
}

// ProfileChanged confirms a /perfil switch.
func ProfileChanged(profile string) string {
	if profile == store.ProfileTechnical {
		return "Perfil cambiado a **sistemas**: respuestas técnicas, con tablas y campos cuando el manual los incluya."
	}
	return "Perfil cambiado a **administración**: respuestas paso a paso, en lenguaje simple."
}

// ProfileUsage explains the /perfil command syntax.
func ProfileUsage() string {
	return "Usá `/perfil sistemas` o `/perfil admin` para cambiar el estilo de las respuestas."
}

// LostContext covers a corrupted session (deep reading without a document).
func LostContext() string {
	return "Perdí el contexto del manual que estábamos leyendo. Escribí *salir* y volvé a buscarlo, por favor."
}

// TemporarilyUnavailable covers answer-generation failures.
func TemporarilyUnavailable() string {
	return "El asistente no está disponible en este momento. Intentá de nuevo en unos minutos."
}
