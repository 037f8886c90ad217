package avro

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// simpleNamePattern is the Avro identifier grammar: a letter or underscore
// followed by letters, digits, or underscores.
var simpleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateSimpleName(name string) error {
	if err := validation.Validate(name, validation.Required, validation.Match(simpleNamePattern)); err != nil {
		return &InvalidName{Name: name}
	}
	return nil
}

// validateFullName allows a dot-separated sequence of simple names, as a
// namespace or a fully qualified name does.
func validateFullName(name string) error {
	if name == "" {
		return nil
	}
	for _, part := range strings.Split(name, ".") {
		if err := validateSimpleName(part); err != nil {
			return &InvalidName{Name: name}
		}
	}
	return nil
}

// qualify joins a simple name to a namespace, unless the name is already
// dot-qualified or there is no enclosing namespace.
func qualify(name, namespace string) string {
	if name == "" || namespace == "" || strings.ContainsRune(name, '.') {
		return name
	}
	return namespace + "." + name
}

// splitName separates a full name into its namespace and trailing simple
// name component.
func splitName(fullName string) (namespace, simple string) {
	idx := strings.LastIndex(fullName, ".")
	if idx < 0 {
		return "", fullName
	}
	return fullName[:idx], fullName[idx+1:]
}

// qualifyAlias qualifies an unqualified alias against the enclosing scope
// namespace, the way an unqualified name is qualified.
func qualifyAlias(alias, scope string) string {
	if strings.ContainsRune(alias, '.') {
		return alias
	}
	return qualify(alias, scope)
}

// nameInfo is embedded by every named schema (Enum, Fixed, Record) to hold
// its name/namespace/doc/aliases and the setters that keep them validated.
type nameInfo struct {
	name      string
	namespace string
	doc       string
	aliases   []string
}

func newNameInfo(fullName string) (nameInfo, error) {
	var n nameInfo
	if err := n.SetFullName(fullName); err != nil {
		return nameInfo{}, err
	}
	return n, nil
}

func (n *nameInfo) Name() string        { return n.name }
func (n *nameInfo) Namespace() string   { return n.namespace }
func (n *nameInfo) FullName() string    { return qualify(n.name, n.namespace) }
func (n *nameInfo) Doc() string         { return n.doc }
func (n *nameInfo) SetDoc(doc string)   { n.doc = doc }
func (n *nameInfo) Aliases() []string   { return append([]string(nil), n.aliases...) }

func (n *nameInfo) SetFullName(full string) error {
	if err := validateFullName(full); err != nil {
		return err
	}
	ns, simple := splitName(full)
	if err := validateSimpleName(simple); err != nil {
		return err
	}
	n.namespace = ns
	n.name = simple
	return nil
}

func (n *nameInfo) SetNamespace(ns string) error {
	if ns != "" {
		if err := validateFullName(ns); err != nil {
			return err
		}
	}
	n.namespace = ns
	return nil
}

func (n *nameInfo) SetName(simple string) error {
	if err := validateSimpleName(simple); err != nil {
		return err
	}
	n.name = simple
	return nil
}

func (n *nameInfo) AddAlias(alias string) error {
	if err := validateFullName(alias); err != nil {
		return err
	}
	for _, a := range n.aliases {
		if a == alias {
			return nil
		}
	}
	n.aliases = append(n.aliases, alias)
	return nil
}
