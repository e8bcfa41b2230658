package roblox

import (
	"regexp"
	"strconv"
	"strings"
)

// groupIDPatterns are tried in order against the trimmed input.
var groupIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)roblox\.com/(?:groups|communities)/configure\?id=(\d+)`),
	regexp.MustCompile(`(?i)roblox\.com/(?:groups|communities)/(\d+)`),
	regexp.MustCompile(`(?i)roblox\.com/my/groups\.aspx\?gid=(\d+)`),
	regexp.MustCompile(`(?i)[?&]groupid=(\d+)`),
	regexp.MustCompile(`^(\d+)$`),
}

// ParseGroupID extracts a group id from a Roblox group or community URL or
// from a bare number.
//
// Accepted forms:
//
//	https://www.roblox.com/groups/4199740/Some-Name
//	https://www.roblox.com/communities/4199740/Some-Name#!/about
//	https://www.roblox.com/groups/configure?id=4199740
//	https://www.roblox.com/My/Groups.aspx?gid=4199740
//	...?groupId=4199740
//	4199740
func ParseGroupID(input string) (GroupID, error) {
	text := strings.TrimSpace(input)
	for _, pattern := range groupIDPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || id <= 0 {
			return 0, &InvalidInputError{Input: input}
		}
		return GroupID(id), nil
	}
	return 0, &InvalidInputError{Input: input}
}
