// Package persona holds the fixed mock identities used to populate the
// sender and recipient fields of generated messages.
package persona

import (
	"math/rand"
	"strings"
)

// Persona is a mock identity. Company, Position and Logo are only set for
// the detailed personas.
type Persona struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Company  string `yaml:"company,omitempty"`
	Position string `yaml:"position,omitempty"`

	// Logo is the SVG file name of the persona's company logo, relative to
	// the configured logo directory.
	Logo string `yaml:"logo,omitempty"`
}

// Domain returns the domain part of the persona's email address.
// Returns "localhost" if no domain can be extracted.
func (p Persona) Domain() string {
	if idx := strings.LastIndex(p.Email, "@"); idx >= 0 && idx < len(p.Email)-1 {
		return p.Email[idx+1:]
	}
	return "localhost"
}

// FirstName returns the first word of the persona's name.
func (p Persona) FirstName() string {
	if fields := strings.Fields(p.Name); len(fields) > 0 {
		return fields[0]
	}
	return p.Name
}

// String formats the persona as "Name <email>".
func (p Persona) String() string {
	if p.Name == "" {
		return p.Email
	}
	return p.Name + " <" + p.Email + ">"
}

var (
	adaLovelace = Persona{
		Name:     "Ada Lovelace",
		Email:    "ada.lovelace@analyticalengine.co.uk",
		Company:  "Analytical Engine Solutions Ltd.",
		Position: "Chief Algorithm Officer",
		Logo:     "aes_logo.svg",
	}
	charlesBabbage = Persona{
		Name:     "Charles Babbage",
		Email:    "charles.babbage@differencemachine.co.uk",
		Company:  "Difference Engine Works",
		Position: "Chief Engineer",
		Logo:     "dew_logo.svg",
	}
	alanTuring = Persona{
		Name:     "Alan Turing",
		Email:    "alan.turing@enigma.gov.uk",
		Company:  "Bletchley Park Research",
		Position: "Head of Cryptography",
		Logo:     "bpr_logo.svg",
	}
	graceHopper = Persona{
		Name:     "Grace Hopper",
		Email:    "grace.hopper@cobol.mil",
		Company:  "COBOL Systems Inc.",
		Position: "Director of Compiler Development",
		Logo:     "csi_logo.svg",
	}
)

// Detailed returns the four detailed personas in fixed order:
// Ada Lovelace, Charles Babbage, Alan Turing, Grace Hopper.
func Detailed() []Persona {
	return []Persona{adaLovelace, charlesBabbage, alanTuring, graceHopper}
}

// Bulk returns the personas used by the bulk generator.
func Bulk() []Persona {
	return []Persona{
		{Name: "Ada Lovelace", Email: "ada.lovelace@analyticalengine.co.uk"},
		{Name: "Charles Babbage", Email: "charles.babbage@differencemachine.co.uk"},
		{Name: "Alan Turing", Email: "alan.turing@enigma.gov.uk"},
		{Name: "Grace Hopper", Email: "grace.hopper@cobol.mil"},
		{Name: "Linus Torvalds", Email: "linus@linux-foundation.org"},
		{Name: "Tim Berners-Lee", Email: "timbl@w3c.org"},
		{Name: "Margaret Hamilton", Email: "margaret@nasa.gov"},
		{Name: "Dennis Ritchie", Email: "dmr@bell-labs.com"},
		{Name: "Ken Thompson", Email: "ken@bell-labs.com"},
		{Name: "Bjarne Stroustrup", Email: "bjarne@cpp.org"},
	}
}

// Pick returns a random persona from list. list must not be empty.
func Pick(rng *rand.Rand, list []Persona) Persona {
	return list[rng.Intn(len(list))]
}

// PickOther returns a random persona from list that differs from exclude.
// If every persona equals exclude, exclude itself is returned.
func PickOther(rng *rand.Rand, list []Persona, exclude Persona) Persona {
	others := make([]Persona, 0, len(list))
	for _, p := range list {
		if p != exclude {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return exclude
	}
	return others[rng.Intn(len(others))]
}
