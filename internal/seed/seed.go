// Package seed fills a development store with a voter roll, either
// generated or imported from a CSV export.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/store"
)

// Roll is one ward's booths and voters ready to load.
type Roll struct {
	WardNo int
	Booths []model.Booth
	Voters []model.Voter
}

// Options controls demo roll generation.
type Options struct {
	WardNo         int
	Booths         int
	VotersPerBooth int

	// FirstBooth is the number of the first generated booth.
	FirstBooth int

	// Seed makes names and ages reproducible. Ids are always random.
	Seed int64
}

var (
	givenNames = []string{
		"Anil", "Bindu", "Chandran", "Deepa", "Gopika", "Hari", "Indira",
		"Jayan", "Kavya", "Lakshmi", "Manoj", "Nisha", "Omana", "Prakash",
		"Radha", "Sajeev", "Thomas", "Usha", "Vinod", "Zeenath",
	}
	houseNames = []string{
		"Sreeja Bhavan", "Kizhakkethil", "Puthenveedu", "Thekkumpuram",
		"Valiyaveettil", "Kottarathil", "Parambil", "Mangalath",
	}
	locations = []string{
		"Govt LP School", "St. Mary's UP School", "Panchayat Library",
		"Anganwadi Hall", "Community Hall", "GHSS North Block",
	}
)

// Generate builds a demo roll. Voters are numbered by serial from 1 in
// every booth.
func Generate(opts Options) Roll {
	if opts.Booths <= 0 {
		opts.Booths = 3
	}
	if opts.VotersPerBooth <= 0 {
		opts.VotersPerBooth = 50
	}
	if opts.FirstBooth <= 0 {
		opts.FirstBooth = 1
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	roll := Roll{WardNo: opts.WardNo}
	for b := 0; b < opts.Booths; b++ {
		number := opts.FirstBooth + b
		roll.Booths = append(roll.Booths, model.Booth{
			BoothNumber: number,
			WardNo:      opts.WardNo,
			Location:    locations[(number-1)%len(locations)],
		})

		for serial := 1; serial <= opts.VotersPerBooth; serial++ {
			gender := "M"
			if rng.Intn(2) == 0 {
				gender = "F"
			}
			roll.Voters = append(roll.Voters, model.Voter{
				ID:          uuid.NewString(),
				SerialNo:    serial,
				Name:        givenNames[rng.Intn(len(givenNames))],
				Guardian:    givenNames[rng.Intn(len(givenNames))],
				Age:         18 + rng.Intn(70),
				Gender:      gender,
				HouseNo:     fmt.Sprintf("%d/%d", number, 100+rng.Intn(400)),
				HouseName:   houseNames[rng.Intn(len(houseNames))],
				BoothNumber: number,
			})
		}
	}
	return roll
}

// Load writes a roll into st. Loading the same roll twice leaves one copy.
func Load(ctx context.Context, st store.Store, roll Roll) error {
	if err := st.UpsertWard(ctx, roll.WardNo, fmt.Sprintf("Ward %d", roll.WardNo)); err != nil {
		return err
	}
	for _, b := range roll.Booths {
		b.WardNo = roll.WardNo
		if err := st.UpsertBooth(ctx, b); err != nil {
			return err
		}
	}
	if err := st.UpsertVoters(ctx, roll.Voters); err != nil {
		return fmt.Errorf("loading %d voters: %w", len(roll.Voters), err)
	}
	return nil
}
