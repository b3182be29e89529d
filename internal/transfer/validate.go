package transfer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/rituals/internal/model"
)

//go:embed schema.cue
var schemaSource string

var (
	// schemaMu serializes use of schemaCtx; cue values are not safe for
	// concurrent use.
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// packageSchema compiles the embedded schema once and returns #Package.
func packageSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile transfer schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Package"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("compile transfer schema: #Package not defined")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate reports whether raw is an importable transfer package.
// It returns nil or an INVALID_TRANSFER_FORMAT error.
func Validate(raw []byte) error {
	if err := checkStructure(raw); err != nil {
		return err
	}
	return checkSchema(raw)
}

// checkStructure accepts a JSON object with a "rituals" array and a
// numeric "version" equal to 1.
func checkStructure(raw []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return model.NewInvalidTransferFormatError("document is not a JSON object", err)
	}

	var rituals []json.RawMessage
	rawRituals, ok := doc["rituals"]
	if !ok || json.Unmarshal(rawRituals, &rituals) != nil || rituals == nil {
		return model.NewInvalidTransferFormatError(`"rituals" must be an array`, nil)
	}

	var version json.Number
	rawVersion, ok := doc["version"]
	if !ok || unmarshalNumber(rawVersion, &version) != nil || !isVersion(version) {
		return model.NewInvalidTransferFormatError(fmt.Sprintf(`unsupported "version" %s`, string(rawVersion)), nil)
	}

	return nil
}

// isVersion compares numerically so 1 and 1.0 are the same version.
func isVersion(n json.Number) bool {
	f, err := n.Float64()
	return err == nil && f == Version
}

func unmarshalNumber(raw json.RawMessage, n *json.Number) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	num, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("not a number")
	}
	*n = num
	return nil
}

// checkSchema unifies the document with the closed #Package definition.
func checkSchema(raw []byte) error {
	ctx, def, err := packageSchema()
	if err != nil {
		return model.NewInvalidTransferFormatError("schema unavailable", err)
	}

	expr, err := cuejson.Extract("package.json", raw)
	if err != nil {
		return model.NewInvalidTransferFormatError("document is not valid JSON", err)
	}

	schemaMu.Lock()
	defer schemaMu.Unlock()

	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return model.NewInvalidTransferFormatError("document is not valid JSON", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return model.NewInvalidTransferFormatError("document does not match schema", err)
	}
	return nil
}
