package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

// decode copies a Struct into a tagged Go value via its JSON form.
func decode(in *structpb.Struct, out any) error {
	if in == nil {
		return nil
	}
	b, err := in.MarshalJSON()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return nil
}

// encode converts any JSON-serializable value into a Struct.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return out, nil
}
