// Package tools exposes the server's operations over the MCP protocol
package tools

import (
	"bytes"
	"encoding/json"
	stderrs "errors"
	"reflect"
	"strings"
	"sync"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// validatorSvc holds a singleton validator and translator
type validatorSvc struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// getValidator initializes the singleton validator with english translations
// and json tag names
func getValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{validate: v, translator: trans}
	})
	return vSvc
}

// bindArguments decodes tool-call arguments into a struct and validates it.
// Unknown argument names are rejected (the tool schemas declare
// additionalProperties false) and validation failures name the offending
// field using its json tag
func bindArguments(args map[string]any, into any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode arguments")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		// the wire form carries only the top-level message, so the decoder
		// detail (unknown field name, type mismatch) goes into it
		return perr.Validationf("invalid arguments: %v", err)
	}

	svc := getValidator()
	if err := svc.validate.Struct(into); err != nil {
		var verrs validator.ValidationErrors
		if stderrs.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return perr.WithField(
				perr.Validationf("%s", fe.Translate(svc.translator)), fe.Field())
		}
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid arguments")
	}
	return nil
}
