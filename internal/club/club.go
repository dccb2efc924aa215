// Package club holds the fixed club catalogue: the defaults each club
// contributes to a logbook and the colour theme it is shown in.
package club

import "strings"

type ID string

const (
	Badminton   ID = "Badminton"
	BolaTampar  ID = "Bola Tampar"
	BolaJaring  ID = "Bola Jaring"
	OlahragaDlm ID = "Olahraga/Permainan Dalaman"
)

var All = []ID{Badminton, BolaTampar, BolaJaring, OlahragaDlm}

// GenericLogo is shown when neither the member nor the club has a logo.
const GenericLogo = "https://raw.githubusercontent.com/firdaushadi442/cloud/refs/heads/main/Logo%20KRS%20Stroke.png"

const SchoolLogo = "https://raw.githubusercontent.com/firdaushadi442/cloud/refs/heads/main/Logo%20SMAUJ%20Baru.png"

// Defaults is what a club provides when a member leaves an override blank.
// Empty text fields fall through to the generic content.
type Defaults struct {
	Logo       string
	Flag       string
	Color      string
	ColorClass string
	Visi       string
	Misi       string
	Moto       string
	Song       string
	Rules      []RuleGroup
}

type RuleGroup struct {
	Title string
	Items []string
}

// Generic content used when neither member nor club supplies one.
var (
	DefaultVisi   = "Menjadikan kelab sebagai wadah pembangunan diri yang holistik."
	DefaultMisi   = "Melahirkan ahli yang berketrampilan, berdisiplin dan berinovasi."
	DefaultMoto   = "BERILMU, BERBAKTI, BERWAWASAN"
	DefaultPledge = "Bahawasanya kami,\nAhli [NAMA KELAB],\nBerjanji dan bersetia,\nAkan mematuhi segala peraturan,\nMenghormati guru dan rakan,\nSerta berusaha memajukan diri.\nDemi kecemerlangan kelab,\nSekolah, bangsa dan negara."
	DefaultSong   = "(Sila masukkan lirik lagu kelab anda di sini)\n\nKami ahli kelab setia,\nBersatu hati menjana jaya,\nIlmu dicari, bakti dicurah,\nUntuk negara yang tercinta."
	DefaultRules  = []RuleGroup{
		{Title: "1. Kehadiran", Items: []string{
			"Kehadiran adalah wajib bagi setiap perjumpaan.",
			"Sila hadir 10 minit awal sebelum aktiviti bermula.",
		}},
		{Title: "2. Disiplin", Items: []string{
			"Sentiasa berpakaian kemas dan sopan.",
			"Menghormati guru penasihat dan AJK Tertinggi.",
		}},
	}
)

var catalogue = map[ID]Defaults{
	Badminton:   {Logo: "https://cdn-icons-png.flaticon.com/512/2906/2906232.png", Color: "#3B82F6", ColorClass: "blue"},
	BolaTampar:  {Logo: "https://cdn-icons-png.flaticon.com/512/3135/3135768.png", Color: "#F59E0B", ColorClass: "amber"},
	BolaJaring:  {Logo: "https://cdn-icons-png.flaticon.com/512/2376/2376179.png", Color: "#10B981", ColorClass: "emerald"},
	OlahragaDlm: {Logo: "https://cdn-icons-png.flaticon.com/512/3354/3354316.png", Color: "#8B5CF6", ColorClass: "violet"},
}

// Parse accepts a club name in any letter case. ok is false for names
// outside the catalogue.
func Parse(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	for _, id := range All {
		if strings.EqualFold(string(id), s) {
			return id, true
		}
	}
	return "", false
}

// Lookup returns the defaults for a club name; unknown names get zero
// Defaults so every field falls through to the generic content.
func Lookup(name string) Defaults {
	id, ok := Parse(name)
	if !ok {
		return Defaults{}
	}
	return catalogue[id]
}

// Pledge fills the club name into the generic pledge.
func Pledge(clubName string) string {
	if strings.TrimSpace(clubName) == "" {
		clubName = "Kelab"
	}
	return strings.ReplaceAll(DefaultPledge, "[NAMA KELAB]", clubName)
}
