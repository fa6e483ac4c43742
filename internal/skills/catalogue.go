// Package skills maps free text onto one canonical skill domain.
package skills

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/interviewer/internal/textutil"
)

// DefaultDomain is used when no catalogue domain matches the detected keywords.
const DefaultDomain = "backend"

// Domain is one canonical skill category with the keywords that identify it.
type Domain struct {
	Name     string   `mapstructure:"name" json:"name"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// Catalogue is an ordered list of domains. Declaration order breaks ties.
type Catalogue struct {
	Domains  []Domain
	Fallback string
}

// NewCatalogue validates the domains and returns a catalogue.
// An empty fallback defaults to DefaultDomain.
func NewCatalogue(domains []Domain, fallback string) (*Catalogue, error) {
	if len(domains) == 0 {
		return nil, errors.New("skill catalogue must contain at least one domain")
	}

	seen := make(map[string]struct{}, len(domains))
	cleaned := make([]Domain, 0, len(domains))
	for i, d := range domains {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			return nil, fmt.Errorf("skill domain #%d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("skill domain %q declared twice", name)
		}
		seen[name] = struct{}{}

		keywords := make([]string, 0, len(d.Keywords))
		for _, k := range d.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		cleaned = append(cleaned, Domain{Name: name, Keywords: keywords})
	}

	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		fallback = DefaultDomain
	}

	return &Catalogue{Domains: cleaned, Fallback: fallback}, nil
}

// Keywords returns the configured keywords of the named domain.
func (c *Catalogue) Keywords(domain string) []string {
	if c == nil {
		return nil
	}
	for _, d := range c.Domains {
		if d.Name == domain {
			return append([]string(nil), d.Keywords...)
		}
	}
	return nil
}

// Extract returns every catalogue keyword found in text, case-insensitively,
// in catalogue order and without duplicates.
func (c *Catalogue) Extract(text string) []string {
	if c == nil || textutil.IsBlank(text) {
		return nil
	}

	found := make([]string, 0)
	seen := make(map[string]struct{})
	for _, d := range c.Domains {
		for _, k := range d.Keywords {
			key := strings.ToLower(k)
			if _, ok := seen[key]; ok {
				continue
			}
			if textutil.ContainsFold(text, k) {
				seen[key] = struct{}{}
				found = append(found, k)
			}
		}
	}
	return found
}

// Default returns the built-in catalogue.
func Default() *Catalogue {
	return &Catalogue{
		Fallback: DefaultDomain,
		Domains: []Domain{
			{Name: "backend", Keywords: []string{"Python", "Java", "Node.js", "C#", "Go", "Databases", "REST APIs", "Microservices"}},
			{Name: "frontend", Keywords: []string{"Frontend", "JavaScript", "React", "Angular", "Vue", "HTML", "CSS", "TypeScript"}},
			{Name: "fullstack", Keywords: []string{"Fullstack", "Frontend + Backend", "End-to-End Application Development", "System Design", "DevOps Basics"}},
			{Name: "devops", Keywords: []string{"DevOps", "AWS", "Azure", "GCP", "Docker", "Kubernetes", "CI/CD Pipelines", "Terraform", "Linux"}},
			{Name: "networking", Keywords: []string{"Networking", "Network Engineering", "Computer Networks", "TCP/IP", "Routing & Switching", "LAN / WAN", "DNS", "DHCP", "Firewalls", "VPN", "Network Security"}},
			{Name: "data", Keywords: []string{"Data", "Data Science", "Data Engineering", "Python", "SQL", "Data Analysis", "Machine Learning", "Deep Learning", "PyTorch", "TensorFlow"}},
			{Name: "mobile", Keywords: []string{"Mobile", "App Development", "Android", "iOS", "React Native", "Flutter"}},
			{Name: "aec_bim", Keywords: []string{"AEC", "BIM", "AEC_BIM", "Tekla", "AutoCAD", "Structural Steel Detailing", "BIM Modeling", "Shop Drawings", "Erection Drawings", "Fabrication Drawings", "GA Drawings", "Connection Detailing", "IS / AISC / BS Codes"}},
			{Name: "hr", Keywords: []string{"HR", "Human Resources", "Recruitment & Staffing", "Talent Acquisition", "HR Operations", "Payroll Management", "Employee Relations", "Performance Management", "HR Policies & Compliance", "Onboarding & Offboarding"}},
			{Name: "qa_testing", Keywords: []string{"QA", "Testing", "Quality Assurance", "Manual Testing", "Automation Testing", "Selenium", "Cypress", "API Testing", "Performance Testing"}},
			{Name: "ui_ux", Keywords: []string{"UI", "UX", "UI/UX", "Product Design", "User Research", "Wireframing", "Prototyping", "Figma", "Adobe XD", "Usability Testing"}},
			{Name: "cybersecurity", Keywords: []string{"Cybersecurity", "Security", "InfoSec", "Information Security", "Threat Modeling", "Vulnerability Assessment", "Penetration Testing", "IAM", "SIEM", "SOC Operations"}},
		},
	}
}
