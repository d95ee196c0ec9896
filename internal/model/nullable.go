package model

import "encoding/json"

// NullString is a PATCH field that tells an absent key from an explicit
// null. Set is true whenever the key was present in the body.
type NullString struct {
	Set   bool
	Valid bool
	Value string
}

func (n *NullString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Change returns the column value for an update: nil clears the column.
func (n NullString) Change() interface{} {
	if !n.Valid {
		return nil
	}
	return n.Value
}
