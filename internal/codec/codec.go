// Package codec serializes the account list for a storage slot.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/atinyakov/AccountKeeper/internal/models"
)

// Codec encodes and decodes the full account list.
type Codec interface {
	Marshal(accounts []models.Account) ([]byte, error)
	Unmarshal(data []byte) ([]models.Account, error)
	// Name identifies the format in configuration.
	Name() string
}

// Format names accepted by ByName.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", FormatJSON:
		return JSON{}, nil
	case FormatCBOR:
		return CBOR{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// JSON stores accounts as a JSON array; time fields use RFC 3339.
type JSON struct{}

func (JSON) Name() string { return FormatJSON }

func (JSON) Marshal(accounts []models.Account) ([]byte, error) {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return json.Marshal(accounts)
}

func (JSON) Unmarshal(data []byte) ([]models.Account, error) {
	var out []models.Account
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	cborEnc, err = opts.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR stores accounts with Core Deterministic Encoding; time fields are RFC 3339 text.
type CBOR struct{}

func (CBOR) Name() string { return FormatCBOR }

func (CBOR) Marshal(accounts []models.Account) ([]byte, error) {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return cborEnc.Marshal(accounts)
}

func (CBOR) Unmarshal(data []byte) ([]models.Account, error) {
	var out []models.Account
	if err := cborDec.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	return out, nil
}
