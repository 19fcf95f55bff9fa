package search

import "strings"

// popularQueries is the curated list shown next to every search response.
var popularQueries = []string{
	"детские праздники",
	"мастер-классы",
	"театр для детей",
	"развивающие занятия",
	"батутный центр",
	"кино для детей",
	"квесты",
	"музеи",
}

type synonymEntry struct {
	key      string
	synonyms []string
}

// synonymTable is ordered; the first key found in the query wins.
var synonymTable = []synonymEntry{
	{key: "мастер-класс", synonyms: []string{"мк", "урок", "занятие"}},
	{key: "кино", synonyms: []string{"фильм", "кинотеатр", "мультфильм"}},
	{key: "театр", synonyms: []string{"спектакль", "представление", "постановка"}},
	{key: "музей", synonyms: []string{"выставка", "экспозиция", "галерея"}},
	{key: "концерт", synonyms: []string{"выступление", "шоу", "музыка"}},
	{key: "праздник", synonyms: []string{"день рождения", "вечеринка", "аниматоры"}},
	{key: "спорт", synonyms: []string{"секция", "тренировка", "футбол"}},
	{key: "парк", synonyms: []string{"аттракционы", "прогулка", "развлечения"}},
}

// PopularQueries returns a copy of the static popular query list.  It does
// not depend on the request.
func PopularQueries() []string {
	return append([]string(nil), popularQueries...)
}

// LookupSynonyms returns the synonyms of the first table key contained in the
// query, or an empty slice.
func LookupSynonyms(query string) []string {
	q := lower(strings.TrimSpace(query))
	if q == "" {
		return []string{}
	}
	for _, e := range synonymTable {
		if strings.Contains(q, e.key) {
			return append([]string(nil), e.synonyms...)
		}
	}
	return []string{}
}
