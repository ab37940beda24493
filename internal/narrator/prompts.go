package narrator

import (
	"fmt"
	"strings"
)

// DefaultTone is used when a game has no tone of its own.
const DefaultTone = "Sérieuse"

const systemPrompt = `Tu es Desland, un vieux jardinier suspect, sarcastique et incisif.

Traits clés:
- SARCASTIQUE: tu te moques des théories absurdes et des déductions illogiques
- INCISIF: tes commentaires sont aiguisés, spirituels et parfois condescendants
- SUSPECT: tu agis comme si tu en savais plus que tu ne le dis, sans jamais rien révéler
- Tu te trompes souvent sur ton nom: "Moi c'est Lesland, euh non c'est Desland, Desland !"

Tu ne révèles jamais la solution. Réponses brèves, en français.`

const vocabulary = `VOCABULAIRE À UTILISER (subtilement):
- "poupouille/péchailloux/tchoupinoux" = petit coquin
- "chnawax masqué" = vilain coquinou
- "armankaboul/Fourlestourtes" = bordel !
- "Koikoubaiseyyyyy" = surprise !
- "All RS5, erreur réseau" = il y a erreur`

func tone(t string) string {
	if strings.TrimSpace(t) == "" {
		return DefaultTone
	}
	return t
}

// ScenarioPrompt asks for the introduction of a new game.
func ScenarioPrompt(rooms, suspects []string, narrativeTone string) Prompt {
	return Prompt{
		System: systemPrompt,
		User: fmt.Sprintf(`Crée un scénario de mystère bref (2-3 phrases) pour un jeu de Cluedo narré par Desland.

Ton narratif: %s
Pièces: %s
Personnages: %s

%s

Commence obligatoirement par Desland se trompant sur son nom, puis introduis le meurtre avec son ton sarcastique et suspect.`,
			tone(narrativeTone), strings.Join(rooms, ", "), strings.Join(suspects, ", "), vocabulary),
	}
}

// SuggestionPrompt asks for a one line comment on a suggestion.
func SuggestionPrompt(player, suspect, weapon, room string, disproved bool, narrativeTone string) Prompt {
	result := "pas réfutée"
	if disproved {
		result = "réfutée"
	}
	return Prompt{
		System: systemPrompt,
		User: fmt.Sprintf(`Desland commente cette suggestion (1 phrase max):

Joueur: %s
Suggestion: %s avec %s dans %s
Résultat: %s
Ton narratif: %s

%s

Moque la logique (ou l'absence de logique) de la suggestion.`,
			player, suspect, weapon, room, result, tone(narrativeTone), vocabulary),
	}
}

// AccusationPrompt asks for a comment on an accusation. A correct accusation
// gets the grudging victory comment.
func AccusationPrompt(player, suspect, weapon, room string, correct bool, narrativeTone string) Prompt {
	if correct {
		return Prompt{
			System: systemPrompt,
			User: fmt.Sprintf(`Desland commente la victoire (1-2 phrases max):

Gagnant: %s
Solution: %s avec %s dans %s
Ton narratif: %s

Desland est sceptique et jaloux. Il minimise la victoire en suggérant que c'était de la chance, pas du talent.`,
				player, suspect, weapon, room, tone(narrativeTone)),
		}
	}
	return Prompt{
		System: systemPrompt,
		User: fmt.Sprintf(`Desland commente cette accusation finale (1 phrase max):

Joueur: %s
Accusation: %s avec %s dans %s
Résultat: fausse
Ton narratif: %s

%s

Desland est condescendant et moqueur à propos de cet échec.`,
			player, suspect, weapon, room, tone(narrativeTone), vocabulary),
	}
}
