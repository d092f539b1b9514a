// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package document

// Service is a single entry of the document's "services" array.
type Service map[string]interface{}

// ID returns the service's id property.
func (s Service) ID() string {
	return stringValue(s, IDProperty)
}

// Type returns the service's type property.
func (s Service) Type() string {
	return stringValue(s, TypeProperty)
}

// ServiceEndpoint returns the raw serviceEndpoint value, which may be a
// string, an array of strings, or an array of objects.
func (s Service) ServiceEndpoint() interface{} {
	return s[ServiceEndpointProperty]
}

// ParseServices converts a raw "services" property value into typed
// entries, ignoring anything that isn't a JSON object.
func ParseServices(value interface{}) []Service {
	arr, ok := value.([]interface{})
	if !ok {
		return nil
	}

	services := make([]Service, 0, len(arr))

	for _, v := range arr {
		if m, ok := v.(map[string]interface{}); ok {
			services = append(services, Service(m))
		}
	}

	return services
}
