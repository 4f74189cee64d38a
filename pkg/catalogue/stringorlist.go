package catalogue

import jsoniter "github.com/json-iterator/go"

// stringOrList decodes a JSON value authored as either a single string or
// a list of strings into a []string, matching the catalogue file's
// relaxed schema for tests/test_patterns/devices.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = []string{single}
		}
		return nil
	}
	var list []string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}
