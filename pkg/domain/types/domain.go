package types

import "fmt"

// Domain is the business risk area a factor or model belongs to
type Domain string

const (
	DomainCyber       Domain = "cyber"
	DomainOperational Domain = "operational"
	DomainFinancial   Domain = "financial"
	DomainCompliance  Domain = "compliance"
	DomainThirdParty  Domain = "third-party"
	DomainStrategic   Domain = "strategic"
)

// AllDomains returns all valid domains
func AllDomains() []Domain {
	return []Domain{
		DomainCyber,
		DomainOperational,
		DomainFinancial,
		DomainCompliance,
		DomainThirdParty,
		DomainStrategic,
	}
}

// IsValid checks if the domain is valid
func (d Domain) IsValid() bool {
	switch d {
	case DomainCyber,
		DomainOperational,
		DomainFinancial,
		DomainCompliance,
		DomainThirdParty,
		DomainStrategic:
		return true
	default:
		return false
	}
}

// String returns the string representation of the domain
func (d Domain) String() string {
	return string(d)
}

// ParseDomain parses a string into a Domain
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid domain: %s", s)
	}
	return d, nil
}
