package poker

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Deck is an ordered sequence of cards. Only the front card can be popped;
// nothing else observes or mutates the remainder.
type Deck struct {
	cards []Card
}

// NewOrderedDeck returns the 52 cards in canonical rank-then-suit order,
// the fixed input Shuffle always starts from.
func NewOrderedDeck() []Card {
	cards := make([]Card, 0, 52)
	for rank := Rank2; rank <= RankA; rank++ {
		for suit := SuitClubs; suit <= SuitSpades; suit++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle produces a deterministic permutation of a fresh 52-card deck: the
// same seed always yields the same order. The permutation stream is drawn
// from an AES-CTR keystream keyed on the seed, the same cipher construction
// pkg/rng uses for its hardware-seeded CSPRNG, but here the key is the seed
// itself rather than an entropy source, so the function is pure.
func Shuffle(seed []byte) Deck {
	stream := newSeededStream(seed)
	cards := NewOrderedDeck()

	for i := len(cards) - 1; i > 0; i-- {
		j := int(stream.next() % uint64(i+1))
		cards[i], cards[j] = cards[j], cards[i]
	}

	return Deck{cards: cards}
}

// Len reports the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// PopFront removes and returns the top card. It panics if the deck is
// empty — callers must check Len first, since an empty pop during a dealt
// hand means a config/seat-count mismatch, not a recoverable condition.
func (d *Deck) PopFront() Card {
	if len(d.cards) == 0 {
		panic("poker: PopFront on empty deck")
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c
}

type seededStream struct {
	block   cipher.Block
	counter uint64
}

func newSeededStream(seed []byte) *seededStream {
	key := seed
	if len(key) != 32 {
		hash := sha256.Sum256(seed)
		key = hash[:]
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		// AES-256 always accepts a 32-byte key; a failure here means the
		// key derivation above is broken, not bad caller input.
		panic(fmt.Sprintf("poker: aes.NewCipher: %v", err))
	}
	return &seededStream{block: block}
}

func (s *seededStream) next() uint64 {
	in := make([]byte, 16)
	binary.BigEndian.PutUint64(in[8:], s.counter)
	s.counter++
	out := make([]byte, 16)
	s.block.Encrypt(out, in)
	return binary.BigEndian.Uint64(out[:8])
}
