package identity

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nicknamePattern = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{1,2}$`)

func TestNicknameShape(t *testing.T) {
	gen := NewSeededGenerator(42)
	for i := 0; i < 200; i++ {
		nick := gen.Nickname()
		assert.Regexp(t, nicknamePattern, nick)
	}
}

func TestAvatarFromTable(t *testing.T) {
	gen := NewSeededGenerator(7)
	known := map[string]bool{}
	for _, a := range avatars {
		known[a] = true
	}
	for i := 0; i < 100; i++ {
		require.True(t, known[gen.Avatar()])
	}
}

func TestGeneratorConcurrentDraws(t *testing.T) {
	gen := NewSeededGenerator(99)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Regexp(t, nicknamePattern, gen.Nickname())
				assert.NotEmpty(t, gen.Avatar())
			}
		}()
	}
	wg.Wait()
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a := NewSeededGenerator(1)
	b := NewSeededGenerator(1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Nickname(), b.Nickname())
		assert.Equal(t, a.Avatar(), b.Avatar())
	}
}
