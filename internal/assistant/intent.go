package assistant

import "slices"

// Intent is the classified purpose of a chat message.
type Intent int

// The zero value is IntentNone.
const (
	IntentNone Intent = iota
	IntentGreeting
	IntentThanks
	IntentHelp
	IntentListPrograms
	IntentLookupByCode
	IntentSearchByName
	IntentMission
	IntentVision
)

var intentNames = [...]string{
	IntentNone:         "none",
	IntentGreeting:     "greeting",
	IntentThanks:       "thanks",
	IntentHelp:         "help",
	IntentListPrograms: "list_programs",
	IntentLookupByCode: "lookup_by_code",
	IntentSearchByName: "search_by_name",
	IntentMission:      "mission",
	IntentVision:       "vision",
}

// String returns the metric/log label of the intent.
func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "unknown"
	}
	return intentNames[i]
}

// Keyword groups, all in normalized form.
var (
	greetingKeywords = []string{
		"hola", "buenas", "buenos dias", "buenas tardes", "buenas noches",
		"saludos", "hey", "hello", "hi",
	}
	thanksKeywords = []string{"gracias", "agradezco", "thanks"}
	helpKeywords   = []string{
		"ayuda", "help",
		"que puedes hacer", "que sabes hacer", "como funciona", "como funcionas",
	}
	listVerbKeywords = []string{
		"lista", "listar", "listado", "muestra", "muestrame", "mostrar",
		"ver", "cuales", "todos", "todas",
	}
	programNounKeywords = []string{"programa", "programas", "carrera", "carreras"}
	codeKeywords        = []string{"codigo", "cod", "id"}
	searchKeywords      = []string{
		"buscar", "busca", "busco", "encontrar", "encuentra",
		"tienen", "ofrecen", "hay", "existe",
	}
	missionKeywords = []string{"mision"}
	visionKeywords  = []string{"vision"}
)

// Rule priorities (lower = evaluated first).
const (
	PriorityGreeting = iota + 1
	PriorityThanks
	PriorityHelp
	PriorityListPrograms
	PriorityLookupByCode
	PrioritySearchByName
	PriorityMission
	PriorityVision
)

type intentRule struct {
	intent   Intent
	priority int
	match    func(tokenSet) bool
}

func anyOf(keywords []string) func(tokenSet) bool {
	return func(ts tokenSet) bool { return ts.has(keywords...) }
}

// rules is the ordered rule table. ListPrograms needs both a verb and a noun
// so that "mostrar" alone does not list the catalog.
var rules = sortedRules([]intentRule{
	{IntentGreeting, PriorityGreeting, anyOf(greetingKeywords)},
	{IntentThanks, PriorityThanks, anyOf(thanksKeywords)},
	{IntentHelp, PriorityHelp, anyOf(helpKeywords)},
	{IntentListPrograms, PriorityListPrograms, func(ts tokenSet) bool {
		return ts.has(listVerbKeywords...) && ts.has(programNounKeywords...)
	}},
	{IntentLookupByCode, PriorityLookupByCode, anyOf(codeKeywords)},
	{IntentSearchByName, PrioritySearchByName, anyOf(searchKeywords)},
	{IntentMission, PriorityMission, anyOf(missionKeywords)},
	{IntentVision, PriorityVision, anyOf(visionKeywords)},
})

func sortedRules(rs []intentRule) []intentRule {
	slices.SortStableFunc(rs, func(a, b intentRule) int { return a.priority - b.priority })
	return rs
}

// Classify returns the intent of the first rule satisfied by normalized
// text, or IntentNone. It is pure: the same input always yields the same intent.
func Classify(normalized string) Intent {
	ts := newTokenSet(normalized)
	if ts.empty() {
		return IntentNone
	}
	for _, r := range rules {
		if r.match(ts) {
			return r.intent
		}
	}
	return IntentNone
}
