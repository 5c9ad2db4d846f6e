package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/voter-roll/internal/model"
)

// Columns recognised in a roll CSV header. Matching ignores case, spaces
// and underscores. booth, serial and name are required.
var csvColumns = map[string]string{
	"id":              "id",
	"booth":           "booth",
	"boothnumber":     "booth",
	"boothno":         "booth",
	"location":        "location",
	"boothlocation":   "location",
	"serial":          "serial",
	"serialno":        "serial",
	"name":            "name",
	"guardian":        "guardian",
	"age":             "age",
	"gender":          "gender",
	"houseno":         "house_no",
	"housename":       "house_name",
	"politicalstatus": "party",
	"party":           "party",
	"hasvoted":        "voted",
	"voted":           "voted",
}

// ParseCSV reads a roll export for wardNo. Rows without an id get a fresh
// one; booths are collected from the booth and location columns.
func ParseCSV(r io.Reader, wardNo int) (Roll, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Roll{}, fmt.Errorf("reading header: %w", err)
	}

	index := map[string]int{}
	for i, h := range header {
		key := strings.NewReplacer(" ", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(h)))
		if col, ok := csvColumns[key]; ok {
			index[col] = i
		}
	}
	for _, required := range []string{"booth", "serial", "name"} {
		if _, ok := index[required]; !ok {
			return Roll{}, fmt.Errorf("missing required column %q", required)
		}
	}

	roll := Roll{WardNo: wardNo}
	booths := map[int]string{}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Roll{}, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		v, err := parseVoter(field)
		if err != nil {
			return Roll{}, fmt.Errorf("line %d: %w", line, err)
		}
		roll.Voters = append(roll.Voters, v)

		if loc := field("location"); loc != "" || booths[v.BoothNumber] == "" {
			booths[v.BoothNumber] = loc
		}
	}

	for number, loc := range booths {
		roll.Booths = append(roll.Booths, model.Booth{
			BoothNumber: number,
			WardNo:      wardNo,
			Location:    loc,
		})
	}
	sort.Slice(roll.Booths, func(i, j int) bool {
		return roll.Booths[i].BoothNumber < roll.Booths[j].BoothNumber
	})

	return roll, nil
}

func parseVoter(field func(string) string) (model.Voter, error) {
	booth, err := strconv.Atoi(field("booth"))
	if err != nil {
		return model.Voter{}, fmt.Errorf("invalid booth %q", field("booth"))
	}
	serial, err := strconv.Atoi(field("serial"))
	if err != nil {
		return model.Voter{}, fmt.Errorf("invalid serial %q", field("serial"))
	}
	name := field("name")
	if name == "" {
		return model.Voter{}, errors.New("empty name")
	}

	v := model.Voter{
		ID:          field("id"),
		SerialNo:    serial,
		Name:        name,
		Guardian:    field("guardian"),
		Gender:      strings.ToUpper(field("gender")),
		HouseNo:     field("house_no"),
		HouseName:   field("house_name"),
		BoothNumber: booth,
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if age := field("age"); age != "" {
		if v.Age, err = strconv.Atoi(age); err != nil {
			return model.Voter{}, fmt.Errorf("invalid age %q", age)
		}
	}
	if raw := field("party"); raw != "" {
		party, err := model.ParseParty(raw, false)
		if err != nil {
			return model.Voter{}, err
		}
		v.PoliticalStatus = &party
	}
	if raw := field("voted"); raw != "" {
		if v.HasVoted, err = strconv.ParseBool(strings.ToLower(raw)); err != nil {
			return model.Voter{}, fmt.Errorf("invalid voted flag %q", raw)
		}
	}
	return v, nil
}
