package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/domain/services"

	"github.com/google/uuid"
)

// Profile selects the shape of generated seed data
type Profile string

const (
	// ProfileServer mirrors the API server dataset: 120 users with random
	// UUIDs, roughly 20000 RP at the top and 150 RP between neighbours
	ProfileServer Profile = "generator"
	// ProfileStatic mirrors the bundled client dataset: 100 users with
	// ids user-1..user-100, pre-sorted by RP
	ProfileStatic Profile = "static"
)

var serverUsernames = []string{
	"AstroExplorer", "CosmicBuilder", "StarshipPilot", "NebulaTrader", "QuantumMiner",
	"GalacticScout", "VoidWalker", "OrbitMaster", "CosmosGuardian", "StellarVoyager",
	"SpaceRanger", "NebulaCrawler", "StarForge", "VoidSeeker", "GalaxyRider",
	"CosmicSage", "StellarMage", "QuantumLeap", "StardustHero", "SpaceWarden",
	"OrbitGuard", "NovaHunter", "CometTracker", "MeteorChaser", "SolarFlare",
	"BlackHoleExplorer", "WormholeNavigator", "PulsarDetective", "SupernovaWitness", "QuasarSeeker",
}

var serverAvatars = []string{"A", "C", "S", "N", "Q", "G", "V", "O", "E", "R", "B", "H", "M", "P", "D", "F", "T", "L", "K", "W"}

var staticUsernames = []string{
	"AstroExplorer", "GalacticMiner", "CosmicTrader", "NebulaHunter", "StarshipPilot",
	"QuantumSeeker", "VoidWalker", "SolarFlare", "MeteorRider", "PlanetHopper",
	"GalaxyRanger", "SpaceNomad", "StellarCaptain", "OrbitMaster", "CosmicVoyager",
	"AsteroidMiner", "BlackHoleExplorer", "NovaGuardian", "PulsarNavigator", "WormholeRider",
	"StardustCollector", "GravityDefier", "CometChaser", "SupernovaWitness", "DarkMatterSeeker",
	"CrystalMiner", "TitaniumHarvester", "DiamondDigger", "PlatinumProspector", "GoldRusher",
	"EnergyTrader", "ResourceGuardian", "SpaceEngineer", "TechSavant", "DataAnalyst",
	"CyberPioneer", "DigitalNomad", "CodeCrusader", "AlgoMaster", "BlockchainBuilder",
	"CryptoKnight", "TokenTrader", "DeFiExplorer", "NFTCollector", "MetaverseMiner",
	"VirtualVoyager", "PixelPioneer", "GameChanger", "LevelMaster", "QuestCompleter",
}

var staticAvatars = []string{"🚀", "⭐", "🌌", "🛸", "🌟", "💫", "🔮", "⚡", "🌠", "🎯"}

var walletPrefixes = []string{"0xa1b2", "0xc3d4", "0xe5f6", "0x7890", "0xabcd", "0xef12", "0x3456", "0x789a", "0xbcde", "0xf012"}

// Generator builds a synthetic user collection
type Generator struct {
	profile Profile
	count   int
	rng     *rand.Rand
	now     func() time.Time
}

var _ ports.SeedSource = (*Generator)(nil)

// NewGenerator creates a generator. A count of zero uses the profile
// default. The same randomSeed always yields the same ids, names, wallets
// and points; only timestamps follow the clock.
func NewGenerator(profile Profile, count int, randomSeed uint64) (*Generator, error) {
	switch profile {
	case ProfileServer:
		if count == 0 {
			count = 120
		}
	case ProfileStatic:
		if count == 0 {
			count = 100
		}
	default:
		return nil, fmt.Errorf("unsupported seed profile: %s", profile)
	}
	if count < 0 {
		return nil, fmt.Errorf("seed count cannot be negative: %d", count)
	}

	return &Generator{
		profile: profile,
		count:   count,
		rng:     rand.New(rand.NewPCG(randomSeed, randomSeed^0x9e3779b97f4a7c15)),
		now:     time.Now,
	}, nil
}

// Name identifies the seed source
func (g *Generator) Name() string {
	return string(g.profile)
}

// LoadUsers generates the collection
func (g *Generator) LoadUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users := make([]models.LeaderboardUser, 0, g.count)
	for i := 0; i < g.count; i++ {
		if g.profile == ProfileStatic {
			users = append(users, g.staticUser(i))
		} else {
			users = append(users, g.serverUser(i))
		}
	}

	if g.profile == ProfileStatic {
		users = services.NewLeaderboardService().SortByReputation(users)
	}
	return users, nil
}

func (g *Generator) serverUser(i int) models.LeaderboardUser {
	baseRP := 20000 - i*150 + g.rng.IntN(300)

	username := serverUsernames[i%len(serverUsernames)]
	if i >= len(serverUsernames) {
		username = fmt.Sprintf("%s%d", username, i/len(serverUsernames))
	}

	now := g.now().UTC()
	return models.LeaderboardUser{
		ID:               g.newID(),
		Username:         username,
		WalletAddress:    fmt.Sprintf("0x%s%04d", g.hex(13), i),
		ReputationPoints: max(100, baseRP),
		Level:            max(1, baseRP/500),
		DailyChange:      g.rng.IntN(400) - 100,
		Avatar:           serverAvatars[i%len(serverAvatars)],
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (g *Generator) staticUser(i int) models.LeaderboardUser {
	baseRP := 10000 - i*100 + g.rng.IntN(200)

	username := staticUsernames[i%len(staticUsernames)]
	if i >= len(staticUsernames) {
		username = fmt.Sprintf("%s%d", username, i/len(staticUsernames)+1)
	}

	now := g.now().UTC()
	age := time.Duration(g.rng.Int64N(int64(30 * 24 * time.Hour)))
	return models.LeaderboardUser{
		ID:               fmt.Sprintf("user-%d", i+1),
		Username:         username,
		WalletAddress:    walletPrefixes[i%len(walletPrefixes)] + g.hex(6) + "..." + g.hex(4),
		ReputationPoints: max(0, baseRP),
		Level:            baseRP/1000 + 1,
		DailyChange:      g.rng.IntN(201) - 100,
		Avatar:           staticAvatars[i%len(staticAvatars)],
		CreatedAt:        now.Add(-age),
		UpdatedAt:        now,
	}
}

// newID draws a version 4 UUID from the seeded source
func (g *Generator) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(rngReader{g.rng})).String()
}

type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}

func (g *Generator) hex(n int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[g.rng.IntN(len(digits))]
	}
	return string(b)
}

// Close releases nothing; generators hold no connections
func (g *Generator) Close() error {
	return nil
}
