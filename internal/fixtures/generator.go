// Package fixtures produces the test data the scenarios submit: unique
// addresses, passwords that satisfy or violate policy, and known-bad inputs.
package fixtures

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"signup-e2e/internal/domain/entity"

	"github.com/google/uuid"
)

const (
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
	passwordTail     = 8

	WeakPassword   = "123"
	InvalidEmail   = "invalid-email"
	DuplicateEmail = "existing-user@ninox.com"
)

// SpecialCharacterEmails are valid addresses that exercise unusual local parts and domains.
var SpecialCharacterEmails = []string{
	"test+tag@example.com",
	"test.dots@example.com",
	"test-dash@example.com",
	"test_underscore@example.com",
	"test@sub.domain.com",
}

var InjectionPasswords = []string{
	"Pass@123!",
	"Pass123;",
	"'Pass123'",
	`"Pass123"`,
	"<Pass123>",
}

var EmailDomains = []string{
	"gmail.com", "outlook.com", "yahoo.com",
	"company.com", "university.edu", "test.de",
}

type Generator struct {
	domain string
	prefix string
	seq    atomic.Uint64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(emailDomain, emailPrefix string) *Generator {
	now := uint64(time.Now().UnixNano())
	return &Generator{
		domain: strings.TrimPrefix(emailDomain, "@"),
		prefix: emailPrefix,
		rng:    rand.New(rand.NewPCG(now, now>>17|1)),
	}
}

// UniqueID is a short random token with a per-generator sequence suffix, so
// two calls on one generator never collide.
func (g *Generator) UniqueID() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return short + "-" + strconv.FormatUint(g.seq.Add(1), 36)
}

func (g *Generator) UniqueEmail() string {
	return g.UniqueEmailWithDomain("example.com")
}

func (g *Generator) UniqueEmailWithDomain(domain string) string {
	return fmt.Sprintf("test-%s@%s", g.UniqueID(), strings.TrimPrefix(domain, "@"))
}

// StrongPassword always contains an upper, a lower, a digit and a symbol, followed by random characters.
func (g *Generator) StrongPassword() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.WriteString("Aa1!")
	for i := 0; i < passwordTail; i++ {
		b.WriteByte(passwordAlphabet[g.rng.IntN(len(passwordAlphabet))])
	}
	return b.String()
}

func (g *Generator) NewUser() entity.TestUser {
	return entity.TestUser{Kind: "generated", Email: g.UniqueEmail(), Password: g.StrongPassword()}
}

func (g *Generator) WorkUser() entity.TestUser {
	return entity.TestUser{Kind: "work", Email: "work.test+" + g.UniqueID() + "@company.com", Password: g.StrongPassword()}
}

func (g *Generator) PersonalUser() entity.TestUser {
	return entity.TestUser{Kind: "personal", Email: "personal.test+" + g.UniqueID() + "@gmail.com", Password: g.StrongPassword()}
}

// RealUser builds an address on the configured domain using plus addressing,
// for example qa.automation+1718000000000-1@example.com.
func (g *Generator) RealUser(tag string) entity.TestUser {
	local := g.prefix
	if tag != "" {
		local += "+" + tag
	}
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.FormatUint(g.seq.Add(1), 36)
	kind := "real"
	if tag != "" {
		kind = "real-" + tag
	}
	return entity.TestUser{
		Kind:     kind,
		Email:    fmt.Sprintf("%s+%s@%s", local, stamp, g.domain),
		Password: g.StrongPassword(),
	}
}
