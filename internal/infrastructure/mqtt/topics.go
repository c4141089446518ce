package mqtt

import "strings"

// DefaultTopicPrefix is the root of every bridge topic unless configured.
const DefaultTopicPrefix = "inception"

// Topics builds the bridge's MQTT topic names under a common prefix.
//
// The hierarchy is:
//
//	{prefix}/state/{kind}/{id}           retained entity state
//	{prefix}/review/{category}           review events
//	{prefix}/command/{kind}/{id}         inbound control commands
//	{prefix}/response/{command_id}       command results
//	{prefix}/bridge/status               online/offline, also the LWT
//	{prefix}/bridge/health               periodic health report
type Topics struct {
	Prefix string
}

// NewTopics returns builders rooted at prefix. Trailing slashes are
// trimmed; an empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) root() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// State returns the retained state topic for one entity.
//
// Example: inception/state/door/4ab1c2
func (t Topics) State(kind, id string) string {
	return t.root() + "/state/" + kind + "/" + id
}

// Review returns the topic for review events of one category.
//
// Example: inception/review/Access
func (t Topics) Review(category string) string {
	return t.root() + "/review/" + category
}

// Command returns the command topic for one entity.
//
// Example: inception/command/area/9f00
func (t Topics) Command(kind, id string) string {
	return t.root() + "/command/" + kind + "/" + id
}

// Response returns the topic carrying the result of one command.
func (t Topics) Response(commandID string) string {
	return t.root() + "/response/" + commandID
}

// BridgeStatus returns the bridge availability topic.
func (t Topics) BridgeStatus() string {
	return t.root() + "/bridge/status"
}

// BridgeHealth returns the retained health report topic.
func (t Topics) BridgeHealth() string {
	return t.root() + "/bridge/health"
}

// AllCommands matches every command topic.
func (t Topics) AllCommands() string {
	return t.root() + "/command/+/+"
}

// AllStates matches every state topic.
func (t Topics) AllStates() string {
	return t.root() + "/state/#"
}

// ParseCommand extracts kind and id from a command topic. It reports false
// for any topic outside {prefix}/command/{kind}/{id}.
func (t Topics) ParseCommand(topic string) (kind, id string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.root()+"/command/")
	if !found {
		return "", "", false
	}
	kind, id, found = strings.Cut(rest, "/")
	if !found || kind == "" || id == "" || strings.Contains(id, "/") {
		return "", "", false
	}
	return kind, id, true
}
