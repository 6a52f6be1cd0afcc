package crawler

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackCategory is assigned when no rule matches
const FallbackCategory = "other"

// CategoryRule maps title keywords to a category
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultCategoryRules are checked in order; the first match wins
var DefaultCategoryRules = []CategoryRule{
	{Name: "dairy", Keywords: []string{"milk", "cheese", "yogurt", "yoghurt", "butter", "dairy"}},
	{Name: "bakery", Keywords: []string{"bread", "roll", "bun", "loaf", "sourdough", "bagel", "croissant", "muffin", "baguette", "bakery"}},
	{Name: "meat", Keywords: []string{"chicken", "beef", "pork", "meat", "lamb", "mince", "bacon", "sausage", "boerewors", "steak"}},
	{Name: "fruits", Keywords: []string{"apple", "banana", "orange", "grape", "pear", "berr", "mango", "melon", "fruit"}},
	{Name: "vegetables", Keywords: []string{"carrot", "potato", "onion", "tomato", "lettuce", "broccoli", "cabbage", "spinach", "vegetable"}},
	{Name: "beverages", Keywords: []string{"coca-cola", "coke", "sprite", "fanta", "juice", "water", "coffee", "soda", "drink"}},
	{Name: "snacks", Keywords: []string{"chips", "chocolate", "candy", "crisps", "biscuit", "sweets", "popcorn", "snack"}},
}

// Classifier assigns categories from product titles
type Classifier struct {
	rules []CategoryRule
}

// NewClassifier returns a classifier over rules, or the defaults when rules is empty
func NewClassifier(rules []CategoryRule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultCategoryRules
	}

	normalized := make([]CategoryRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, k := range rule.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		normalized = append(normalized, CategoryRule{Name: rule.Name, Keywords: keywords})
	}
	return &Classifier{rules: normalized}
}

// LoadClassifier reads rules from a YAML file of the form
//
//	categories:
//	  - name: dairy
//	    keywords: [milk, cheese]
//
// An empty path yields the default rules.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return NewClassifier(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category rules: %w", err)
	}

	var file struct {
		Categories []CategoryRule `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse category rules %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("category rules %s define no categories", path)
	}
	for i, rule := range file.Categories {
		if rule.Name == "" {
			return nil, fmt.Errorf("category rule %d in %s has no name", i, path)
		}
	}

	return NewClassifier(file.Categories), nil
}

// Classify returns the first category with a keyword contained in text
func (c *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Name
			}
		}
	}
	return FallbackCategory
}
