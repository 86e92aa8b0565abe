// Package vtuber implements the VTuber read-query layer: group
// expansion, result filtering, cache key derivation, growth
// calculation and the cached query service on top of the repositories.
package vtuber

import "sort"

// groupMappings expands an agency alias into the group tags actually
// stored on records. Keys mirror what upstream scrapers tagged over
// the years, so several aliases map to a single tag.
var groupMappings = map[string][]string{
	"holopro":             {"hololive", "hololiveid", "hololivecn", "hololiveen", "hololivejp", "holostars"},
	"hololive":            {"hololive", "hololiveid", "hololivecn", "hololiveen", "hololivejp"},
	"hololivejp":          {"hololive", "hololivejp"},
	"hololiveid":          {"hololiveid"},
	"hololivecn":          {"hololivecn"},
	"hololiveen":          {"hololiveen"},
	"holostars":           {"holostars"},
	"nijisanji":           {"nijisanji", "nijisanjijp", "nijisanjikr", "nijisanjiid", "nijisanjien", "nijisanjiin", "virtuareal"},
	"nijisanjikr":         {"nijisanjikr"},
	"nijisanjijp":         {"nijisanjijp", "nijisanji"},
	"nijisanjiin":         {"nijisanjiin"},
	"nijisanjien":         {"nijisanjien"},
	"nijisanjiid":         {"nijisanjiid"},
	"nijisanjiworld":      {"nijisanjikr", "nijisanjiid", "nijisanjien", "nijisanjiin"},
	"virtuareal":          {"virtuareal"},
	"vtuberesports":       {"irisbg", "cattleyarg", "lupinusvg"},
	"lupinusvg":           {"lupinusvg"},
	"irisblackgames":      {"irisbg"},
	"cattleyareginagames": {"cattleyarg"},
	"nanashi":             {"vapart", "animare", "honeystrap", "sugarlyric"},
	"animare":             {"animare"},
	"vapart":              {"vapart"},
	"honeystrap":          {"honeystrap"},
	"sugarlyric":          {"sugarlyric"},
	"others":              {"entum", "solotuber", "solovtuber", "paryiproject", "vic", "dotlive", "vgaming", "vshojo", "upd8"},
	"mahapanca":           {"mahapanca"},
	"vivid":               {"vivid"},
	"noripro":             {"noripro"},
	"hanayori":            {"hanayori"},
	"voms":                {"voms"},
	"kizunaai":            {"kizunaai"},
	"dotlive":             {"dotlive"},
	"vic":                 {"vic"},
	"vgaming":             {"vgaming"},
	"paryiproject":        {"paryiproject"},
	"solo":                {"solotuber", "solovtuber"},
	"solotuber":           {"solotuber"},
	"solovtuber":          {"solovtuber"},
	"entum":               {"entum"},
	"vshojo":              {"vshojo"},
}

// ExpandGroups flattens a list of agency aliases into the deduplicated
// set of underlying group tags, sorted. A name with no mapping passes
// through unchanged so callers can filter on raw tags directly.
// Expanding an empty list yields an empty list.
func ExpandGroups(names []string) []string {
	seen := make(map[string]struct{})
	for _, name := range names {
		mapped, ok := groupMappings[name]
		if !ok {
			mapped = []string{name}
		}
		for _, m := range mapped {
			seen[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
