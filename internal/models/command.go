package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Command is the wire form of a single field edit: {"op": "<field>", "value": <json>}.
type Command struct {
	Op    string          `json:"op" binding:"required"`
	Value json.RawMessage `json:"value"`
}

// DecodeCampaignUpdate converts a wire command into a typed campaign edit.
func DecodeCampaignUpdate(cmd Command) (CampaignUpdate, error) {
	switch cmd.Op {
	case "name", "description", "start_date", "end_date":
	default:
		return nil, fmt.Errorf("campaign %q: %w", cmd.Op, ErrUnknownField)
	}
	s, err := decodeString(cmd)
	if err != nil {
		return nil, err
	}
	switch cmd.Op {
	case "name":
		return SetName{Value: s}, nil
	case "description":
		return SetDescription{Value: s}, nil
	case "start_date":
		return SetStartDate{Value: s}, nil
	default:
		return SetEndDate{Value: s}, nil
	}
}

// DecodeVoucherUpdate converts a wire command into a typed voucher edit.
func DecodeVoucherUpdate(cmd Command) (VoucherUpdate, error) {
	switch cmd.Op {
	case "primary_color", "secondary_color", "text_color", "title", "description", "terms_and_conditions":
		s, err := decodeString(cmd)
		if err != nil {
			return nil, err
		}
		switch cmd.Op {
		case "primary_color":
			return SetPrimaryColor{Value: s}, nil
		case "secondary_color":
			return SetSecondaryColor{Value: s}, nil
		case "text_color":
			return SetTextColor{Value: s}, nil
		case "title":
			return SetTitle{Value: s}, nil
		case "description":
			return SetVoucherDescription{Value: s}, nil
		default:
			return SetTerms{Value: s}, nil
		}
	case "max_redemptions", "validity_days":
		var n int
		if err := json.Unmarshal(cmd.Value, &n); err != nil {
			return nil, fmt.Errorf("voucher %q: %w", cmd.Op, ErrInvalidValue)
		}
		if cmd.Op == "max_redemptions" {
			return SetMaxRedemptions{Value: n}, nil
		}
		return SetValidityDays{Value: n}, nil
	case "discount_type":
		s, err := decodeString(cmd)
		if err != nil {
			return nil, err
		}
		t := DiscountType(s)
		if !t.Valid() {
			return nil, fmt.Errorf("discount type %q: %w", s, ErrInvalidValue)
		}
		return SetDiscountType{Value: t}, nil
	case "discount_value":
		var f float64
		if err := json.Unmarshal(cmd.Value, &f); err != nil {
			return nil, fmt.Errorf("voucher %q: %w", cmd.Op, ErrInvalidValue)
		}
		return SetDiscountValue{Value: f}, nil
	}
	return nil, fmt.Errorf("voucher %q: %w", cmd.Op, ErrUnknownField)
}

func decodeString(cmd Command) (string, error) {
	var s string
	if err := json.Unmarshal(cmd.Value, &s); err != nil {
		return "", fmt.Errorf("%q: %w", cmd.Op, ErrInvalidValue)
	}
	return s, nil
}
