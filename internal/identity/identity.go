// Package identity assigns anonymous nicknames and avatars. Identities
// are server-generated per join; clients never choose their own.
package identity

import (
	"math/rand"
	"strconv"
	"sync"
)

var adjectives = []string{
	"Silent", "Shadow", "Mystic", "Phantom", "Stealth", "Ghost", "Ninja", "Secret",
	"Hidden", "Cosmic", "Digital", "Cyber", "Quantum", "Neon", "Electric", "Atomic",
}

var animals = []string{
	"Tiger", "Wolf", "Eagle", "Panther", "Fox", "Raven", "Falcon", "Shark",
	"Dragon", "Phoenix", "Viper", "Lynx", "Hawk", "Cobra", "Jaguar", "Owl",
}

var avatars = []string{
	"🦊", "🐱", "🐺", "🦅", "🐯", "🦈", "🐉", "🦉", "🐍", "🦎", "🐙", "🦋",
	"🐝", "🦇", "🐧", "🦜", "🦚", "🦢", "🦭", "🐨", "🐼", "🦘", "🦥", "🦦",
}

// Source is the subset of math/rand used by the generator, so tests can
// pass a seeded source.
type Source interface {
	Intn(n int) int
}

// Generator produces random identities from a Source. Handlers share one
// Generator across requests, so draws are serialized; math/rand sources
// are not safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd Source
}

// NewGenerator builds a Generator over rnd.
func NewGenerator(rnd Source) *Generator {
	return &Generator{rnd: rnd}
}

// NewSeededGenerator builds a Generator over a math/rand source with the
// given seed.
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

// Nickname returns an adjective+animal+number handle, e.g. "SilentFox7".
func (g *Generator) Nickname() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	adjective := adjectives[g.rnd.Intn(len(adjectives))]
	animal := animals[g.rnd.Intn(len(animals))]
	number := g.rnd.Intn(100)
	return adjective + animal + strconv.Itoa(number)
}

// Avatar returns a random glyph from the avatar table.
func (g *Generator) Avatar() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return avatars[g.rnd.Intn(len(avatars))]
}
