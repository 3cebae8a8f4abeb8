package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/iockit/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "memberService")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("name", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOptionalUUID(t *testing.T) {
	v := New()
	v.OptionalUUID("id", "")
	if v.HasErrors() {
		t.Error("expected no error for empty optional UUID")
	}

	v2 := New()
	v2.OptionalUUID("id", uuid.New().String())
	if v2.HasErrors() {
		t.Error("expected no error for valid optional UUID")
	}

	v3 := New()
	v3.OptionalUUID("id", "bad-uuid")
	if !v3.HasErrors() {
		t.Error("expected error for invalid optional UUID")
	}
}

func TestValidatorDefinitionName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"camel case", "memberRepository", false},
		{"dotted", "shop.orders", false},
		{"dash and underscore", "rate_policy-v2", false},
		{"empty is skipped", "", false},
		{"leading digit", "1policy", true},
		{"whitespace", "member service", true},
		{"slash", "shop/orders", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().DefinitionName("name", tc.value)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("DefinitionName(%q) errors = %v, wantErr %v", tc.value, v.Errors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("environment", "staging", []string{"development", "staging", "production"})
	if v.HasErrors() {
		t.Error("expected no error for valid oneOf value")
	}

	v2 := New()
	v2.OneOf("environment", "qa", []string{"development", "staging"})
	if !v2.HasErrors() {
		t.Error("expected error for invalid oneOf value")
	}

	v3 := New()
	v3.OneOf("environment", "", []string{"development"})
	if v3.HasErrors() {
		t.Error("expected no error for empty oneOf value")
	}
}

func TestValidatorUnique(t *testing.T) {
	v := New().Unique("definitions", []string{"a", "b", "c"})
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New().Unique("definitions", []string{"a", "b", "a", "a", "b"})
	if len(v2.Errors()) != 2 {
		t.Fatalf("expected one error per duplicated value, got %v", v2.Errors())
	}
	if !strings.Contains(v2.Errors()[0].Message, `"a"`) {
		t.Errorf("expected first duplicate to be a, got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorExcludes(t *testing.T) {
	v := New().Excludes("depends_on", []string{"repo", "policy"}, "orderService", "must not reference itself")
	if v.HasErrors() {
		t.Error("expected no error when value is absent")
	}

	v2 := New().Excludes("depends_on", []string{"repo", "orderService"}, "orderService", "must not reference itself")
	if !v2.HasErrors() {
		t.Fatal("expected error when value is present")
	}
	if v2.Errors()[0].Message != "must not reference itself" {
		t.Errorf("unexpected message %q", v2.Errors()[0].Message)
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "field", "should pass")
	if v.HasErrors() {
		t.Error("expected no error for true condition")
	}

	v2 := New()
	v2.Custom(false, "field", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error for false condition")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	v.Required("name", "repo")
	if appErr := v.Validate(); appErr != nil {
		t.Error("expected nil for valid input")
	}

	v2 := New()
	v2.Required("name", "").Required("factory", "")
	appErr := v2.Validate()
	if appErr == nil {
		t.Fatal("expected validation error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", errors.ErrCodeInvalidInput, appErr.Code)
	}
	fields, ok := appErr.Details[DetailFields].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 field errors in details, got %v", appErr.Details[DetailFields])
	}
	if !strings.Contains(appErr.Message, "name: is required") {
		t.Errorf("expected message to list name, got %q", appErr.Message)
	}
}

func TestValidatorMerge(t *testing.T) {
	inner := New().Required("definitions[0].name", "").Validate()

	v := New().Merge("container", inner)
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "container.definitions[0].name" {
		t.Errorf("expected nested field error to be prefixed, got %v", v.Errors())
	}

	v2 := New().Merge("", inner)
	if len(v2.Errors()) != 1 || v2.Errors()[0].Field != "definitions[0].name" {
		t.Errorf("expected empty prefix to keep the path, got %v", v2.Errors())
	}

	v3 := New().Merge("logging", fmt.Errorf("invalid log level: loud"))
	if len(v3.Errors()) != 1 || v3.Errors()[0].Field != "logging" {
		t.Errorf("expected plain error recorded under field, got %v", v3.Errors())
	}

	v4 := New().Merge("x", nil)
	if v4.HasErrors() {
		t.Error("expected nil error to be ignored")
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "repo").DefinitionName("name", "repo").Unique("roles", []string{"a"})
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

type structDefinition struct {
	Name      string   `mapstructure:"name" validate:"required,defname"`
	Factory   string   `mapstructure:"factory" validate:"required"`
	DependsOn []string `mapstructure:"depends_on" validate:"unique,dive,defname"`
}

type structContainer struct {
	ID          string             `mapstructure:"id" validate:"omitempty,uuid"`
	Definitions []structDefinition `mapstructure:"definitions" validate:"dive"`
}

func TestValidateStructValid(t *testing.T) {
	cfg := structContainer{
		ID: uuid.New().String(),
		Definitions: []structDefinition{
			{Name: "repo", Factory: "memory"},
			{Name: "service", Factory: "service", DependsOn: []string{"repo"}},
		},
	}
	if err := ValidateStruct(cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateStructReportsConfigKeys(t *testing.T) {
	cfg := structContainer{
		ID: "not-a-uuid",
		Definitions: []structDefinition{
			{Name: "repo", Factory: "memory"},
			{Name: "", Factory: "service", DependsOn: []string{"repo", "repo"}},
		},
	}

	err := ValidateStruct(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	fields, _ := appErr.Details[DetailFields].([]FieldError)

	want := map[string]string{
		"id":                        "must be a valid UUID",
		"definitions[1].name":       "is required",
		"definitions[1].depends_on": "must not contain duplicates",
	}
	got := make(map[string]string, len(fields))
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s: expected %q, got %q (all: %v)", field, msg, got[field], fields)
		}
	}
}

func TestValidateStructDefName(t *testing.T) {
	err := ValidateStruct(structDefinition{Name: "bad name", Factory: "x"})
	if err == nil {
		t.Fatal("expected error for invalid definition name")
	}
	if !strings.Contains(err.Error(), "name: must start with a letter") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateStructNonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestValidateUUIDFunc(t *testing.T) {
	validUUID := uuid.New().String()
	id, err := ValidateUUID("container_id", validUUID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id.String() != validUUID {
		t.Errorf("expected %s, got %s", validUUID, id.String())
	}

	if _, err := ValidateUUID("container_id", ""); err == nil {
		t.Error("expected error for empty UUID")
	}
	if _, err := ValidateUUID("container_id", "bad"); err == nil {
		t.Error("expected error for invalid UUID")
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}
