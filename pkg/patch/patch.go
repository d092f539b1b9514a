// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package patch implements the document patch actions a Sidetree delta
// carries (replace, add/remove public keys, add/remove services, and raw
// IETF JSON Patch) along with their structural validation rules.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
)

// Action identifies which patch operation a Patch performs.
type Action string

const (
	ActionReplace           Action = "replace"
	ActionAddPublicKeys     Action = "add-public-keys"
	ActionRemovePublicKeys  Action = "remove-public-keys"
	ActionAddServices       Action = "add-services"
	ActionRemoveServices    Action = "remove-services"
	ActionIETFJSONPatch     Action = "ietf-json-patch"
)

// Patch is a single document patch: an "action" discriminator plus one
// action-specific value field.
type Patch map[string]interface{}

const actionKey = "action"

// valueKeys maps each action to the name of its value field.
var valueKeys = map[Action]string{
	ActionReplace:          "document",
	ActionAddPublicKeys:    "publicKeys",
	ActionRemovePublicKeys: "ids",
	ActionAddServices:      "services",
	ActionRemoveServices:   "ids",
	ActionIETFJSONPatch:    "patches",
}

// GetAction returns the patch's action.
func (p Patch) GetAction() (Action, error) {
	v, ok := p[actionKey]
	if !ok {
		return "", errors.New("patch is missing action element")
	}

	s, ok := v.(string)
	if !ok {
		return "", errors.New("action must be a string")
	}

	return Action(s), nil
}

// GetValue returns the patch's action-specific value.
func (p Patch) GetValue() (interface{}, error) {
	action, err := p.GetAction()
	if err != nil {
		return nil, err
	}

	key, ok := valueKeys[action]
	if !ok {
		return nil, fmt.Errorf("action '%s' is not supported", action)
	}

	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("invalid patch: key '%s' is missing", key)
	}

	return v, nil
}

// NewReplacePatch creates a "replace" patch from a raw document JSON
// string.
func NewReplacePatch(doc string) (Patch, error) {
	return newPatch(ActionReplace, doc)
}

// NewAddPublicKeysPatch creates an "add-public-keys" patch from a raw JSON
// array of public key objects.
func NewAddPublicKeysPatch(publicKeys string) (Patch, error) {
	return newPatch(ActionAddPublicKeys, publicKeys)
}

// NewRemovePublicKeysPatch creates a "remove-public-keys" patch from a raw
// JSON array of key ids.
func NewRemovePublicKeysPatch(ids string) (Patch, error) {
	return newPatch(ActionRemovePublicKeys, ids)
}

// NewAddServicesPatch creates an "add-services" patch from a raw JSON
// array of service objects.
func NewAddServicesPatch(services string) (Patch, error) {
	return newPatch(ActionAddServices, services)
}

// NewRemoveServicesPatch creates a "remove-services" patch from a raw JSON
// array of service ids.
func NewRemoveServicesPatch(ids string) (Patch, error) {
	return newPatch(ActionRemoveServices, ids)
}

// NewJSONPatch creates an "ietf-json-patch" patch from a raw JSON array of
// RFC 6902 operations.
func NewJSONPatch(patches string) (Patch, error) {
	return newPatch(ActionIETFJSONPatch, patches)
}

func newPatch(action Action, rawValue string) (Patch, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
		return nil, fmt.Errorf("invalid %s patch value: %w", action, err)
	}

	return Patch{
		actionKey:          string(action),
		valueKeys[action]: value,
	}, nil
}

// PatchesFromDocument wraps a raw document JSON string in a single
// "replace" patch, the shape a Create operation's delta carries.
func PatchesFromDocument(doc string) ([]Patch, error) {
	p, err := NewReplacePatch(doc)
	if err != nil {
		return nil, err
	}

	return []Patch{p}, nil
}

// Validate checks the patch's structural rules for its action.
func (p Patch) Validate() error { //nolint:gocyclo
	action, err := p.GetAction()
	if err != nil {
		return err
	}

	value, err := p.GetValue()
	if err != nil {
		return err
	}

	switch action {
	case ActionReplace:
		doc, ok := value.(map[string]interface{})
		if !ok {
			return errors.New("invalid replace patch document")
		}

		return validateDocument(document.Document(doc))
	case ActionAddPublicKeys:
		arr, err := getRequiredArray(value)
		if err != nil {
			return fmt.Errorf("invalid add public keys value: %s", err.Error())
		}

		return validatePublicKeys(document.ParsePublicKeys(arr))
	case ActionRemovePublicKeys:
		arr, err := getRequiredArray(value)
		if err != nil {
			return fmt.Errorf("invalid remove public keys value: %s", err.Error())
		}

		return validateIDs(document.StringArray(arr))
	case ActionAddServices:
		arr, err := getRequiredArray(value)
		if err != nil {
			return fmt.Errorf("invalid add services value: %s", err.Error())
		}

		return validateServices(document.ParseServices(arr))
	case ActionRemoveServices:
		arr, err := getRequiredArray(value)
		if err != nil {
			return fmt.Errorf("invalid remove services value: %s", err.Error())
		}

		return validateIDs(document.StringArray(arr))
	case ActionIETFJSONPatch:
		ops, ok := value.([]interface{})
		if !ok {
			return errors.New("invalid ietf-json-patch value")
		}

		return validateJSONPatchOps(ops)
	default:
		return fmt.Errorf("action '%s' is not supported", action)
	}
}

const (
	maxIDLength          = 50
	maxServiceTypeLength = 30
)

var asciiRegex = regexp.MustCompile("^[A-Za-z0-9_-]+$")

var allowedPurposes = map[document.KeyPurpose]bool{
	document.KeyPurposeAuthentication:       true,
	document.KeyPurposeAssertionMethod:      true,
	document.KeyPurposeKeyAgreement:         true,
	document.KeyPurposeCapabilityDelegation: true,
	document.KeyPurposeCapabilityInvocation: true,
}

const (
	bls12381G2Key2020                 = "Bls12381G2Key2020"
	jsonWebKey2020                    = "JsonWebKey2020"
	ecdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	x25519KeyAgreementKey2019         = "X25519KeyAgreementKey2019"
	ed25519VerificationKey2018        = "Ed25519VerificationKey2018"
	ed25519VerificationKey2020        = "Ed25519VerificationKey2020"
)

type existenceMap map[string]bool

var allowedKeyTypesGeneral = existenceMap{
	bls12381G2Key2020:                 true,
	jsonWebKey2020:                    true,
	ecdsaSecp256k1VerificationKey2019: true,
	ed25519VerificationKey2018:        true,
	ed25519VerificationKey2020:        true,
	x25519KeyAgreementKey2019:         true,
}

var allowedKeyTypesVerification = existenceMap{
	bls12381G2Key2020:                 true,
	jsonWebKey2020:                    true,
	ecdsaSecp256k1VerificationKey2019: true,
	ed25519VerificationKey2018:        true,
	ed25519VerificationKey2020:        true,
}

var allowedKeyTypesAgreement = existenceMap{
	bls12381G2Key2020:                 true,
	jsonWebKey2020:                    true,
	ecdsaSecp256k1VerificationKey2019: true,
	x25519KeyAgreementKey2019:         true,
}

var allowedKeyTypes = map[document.KeyPurpose]existenceMap{
	document.KeyPurposeAuthentication:       allowedKeyTypesVerification,
	document.KeyPurposeAssertionMethod:      allowedKeyTypesVerification,
	document.KeyPurposeKeyAgreement:         allowedKeyTypesAgreement,
	document.KeyPurposeCapabilityDelegation: allowedKeyTypesVerification,
	document.KeyPurposeCapabilityInvocation: allowedKeyTypesVerification,
}

// validateJSONPatchOps checks each RFC 6902 operation names an op and a
// path, and that no path targets publicKeys or services: those properties
// are only reachable through the dedicated patch actions so their id and
// key-type rules cannot be bypassed.
func validateJSONPatchOps(ops []interface{}) error {
	if len(ops) == 0 {
		return errors.New("ietf-json-patch: missing operations")
	}

	for _, entry := range ops {
		op, ok := entry.(map[string]interface{})
		if !ok {
			return errors.New("ietf-json-patch: operation is not an object")
		}

		if _, ok := op["op"].(string); !ok {
			return errors.New("ietf-json-patch: operation is missing op")
		}

		path, ok := op["path"].(string)
		if !ok {
			return errors.New("ietf-json-patch: operation is missing path")
		}

		for _, forbidden := range []string{document.PublicKeyProperty, document.ServiceProperty} {
			if path == "/"+forbidden || strings.HasPrefix(path, "/"+forbidden+"/") {
				return fmt.Errorf("ietf-json-patch: patching %q is not allowed", forbidden)
			}
		}
	}

	return nil
}

func validateDocument(doc document.Document) error {
	if err := validatePublicKeys(doc.PublicKeys()); err != nil {
		return err
	}

	return validateServices(doc.Services())
}

func validatePublicKeys(pubKeys []document.PublicKey) error {
	ids := make(map[string]bool)

	for _, pubKey := range pubKeys {
		kid := pubKey.ID()
		if err := validateID(kid); err != nil {
			return fmt.Errorf("public key: %s", err.Error())
		}

		if ids[kid] {
			return fmt.Errorf("duplicate public key id: %s", kid)
		}

		ids[kid] = true

		if err := validateKeyPurposes(pubKey); err != nil {
			return err
		}

		if !validateKeyTypePurpose(pubKey) {
			return fmt.Errorf("invalid key type: %s", pubKey.Type())
		}

		if jwk := pubKey.PublicKeyJwk(); jwk != nil {
			if err := jwk.Validate(); err != nil && pubKey.PublicKeyBase58() == "" {
				return err
			}
		}
	}

	return nil
}

func validateID(id string) error {
	if len(id) > maxIDLength {
		return fmt.Errorf("id exceeds maximum length: %d", maxIDLength)
	}

	if !asciiRegex.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

func validateIDs(ids []string) error {
	for _, id := range ids {
		if err := validateID(id); err != nil {
			return err
		}
	}

	return nil
}

func validateServices(services []document.Service) error {
	ids := make(map[string]bool)

	for _, service := range services {
		if err := validateService(service); err != nil {
			return err
		}

		if ids[service.ID()] {
			return fmt.Errorf("duplicate service id: %s", service.ID())
		}

		ids[service.ID()] = true
	}

	return nil
}

func validateService(service document.Service) error {
	if service.ID() == "" {
		return errors.New("service id is missing")
	}

	if err := validateID(service.ID()); err != nil {
		return fmt.Errorf("service: %s", err.Error())
	}

	if service.Type() == "" {
		return errors.New("service type is missing")
	}

	if len(service.Type()) > maxServiceTypeLength {
		return fmt.Errorf("service type exceeds maximum length: %d", maxServiceTypeLength)
	}

	return validateServiceEndpoint(service.ServiceEndpoint())
}

func validateServiceEndpoint(endpoint interface{}) error {
	if endpoint == nil {
		return errors.New("service endpoint is missing")
	}

	switch v := endpoint.(type) {
	case string:
		return validateURI(v)
	case []interface{}:
		for _, obj := range v {
			if uri, ok := obj.(string); ok {
				if err := validateURI(uri); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func validateURI(uri string) error {
	if uri == "" {
		return errors.New("service endpoint URI is empty")
	}

	if _, err := url.ParseRequestURI(uri); err != nil {
		return fmt.Errorf("service endpoint '%s' is not a valid URI: %s", uri, err.Error())
	}

	return nil
}

func validateKeyTypePurpose(pubKey document.PublicKey) bool {
	if len(pubKey.Purpose()) == 0 {
		_, ok := allowedKeyTypesGeneral[pubKey.Type()]

		return ok
	}

	for _, purpose := range pubKey.Purpose() {
		allowed, ok := allowedKeyTypes[document.KeyPurpose(purpose)]
		if !ok {
			return false
		}

		if !allowed[pubKey.Type()] {
			return false
		}
	}

	return true
}

func validateKeyPurposes(pubKey document.PublicKey) error {
	_, exists := pubKey[document.PurposesProperty]

	if exists && len(pubKey.Purpose()) == 0 {
		return fmt.Errorf("if '%s' key is specified, it must contain at least one purpose", document.PurposesProperty)
	}

	if len(pubKey.Purpose()) > len(allowedPurposes) {
		return fmt.Errorf("public key purpose exceeds maximum length: %d", len(allowedPurposes))
	}

	for _, purpose := range pubKey.Purpose() {
		if !allowedPurposes[document.KeyPurpose(purpose)] {
			return fmt.Errorf("invalid purpose: %s", purpose)
		}
	}

	return nil
}

func getRequiredArray(entry interface{}) ([]interface{}, error) {
	arr, ok := entry.([]interface{})
	if !ok {
		return nil, errors.New("expected array of interfaces")
	}

	if len(arr) == 0 {
		return nil, errors.New("required array is empty")
	}

	return arr, nil
}
