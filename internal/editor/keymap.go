package editor

import "github.com/gdamore/tcell/v2"

// Command is an action the editor hands back to the application.
type Command int

const (
	CmdNone Command = iota
	CmdNew
	CmdOpen
	CmdSave
	CmdSaveAs
	CmdQuit
	CmdPublish
	CmdPreview
	CmdGenerateTitle
	CmdSuggestTags
	CmdCheckNow
	CmdAutosaveInterval
	CmdHelp
)

var commandNames = map[Command]string{
	CmdNew:              "new",
	CmdOpen:             "open",
	CmdSave:             "save",
	CmdSaveAs:           "save-as",
	CmdQuit:             "quit",
	CmdPublish:          "publish",
	CmdPreview:          "preview",
	CmdGenerateTitle:    "generate-title",
	CmdSuggestTags:      "suggest-tags",
	CmdCheckNow:         "check",
	CmdAutosaveInterval: "autosave-interval",
	CmdHelp:             "help",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "none"
}

// Keymap binds special keys to commands.
type Keymap map[tcell.Key]Command

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		tcell.KeyCtrlN: CmdNew,
		tcell.KeyCtrlO: CmdOpen,
		tcell.KeyCtrlS: CmdSave,
		tcell.KeyF2:    CmdSaveAs,
		tcell.KeyCtrlQ: CmdQuit,
		tcell.KeyCtrlP: CmdPublish,
		tcell.KeyCtrlR: CmdPreview,
		tcell.KeyCtrlT: CmdGenerateTitle,
		tcell.KeyCtrlG: CmdSuggestTags,
		tcell.KeyF7:    CmdCheckNow,
		tcell.KeyF5:    CmdAutosaveInterval,
		tcell.KeyF1:    CmdHelp,
	}
}

// HelpText is shown for CmdHelp.
const HelpText = "^S save  F2 save as  ^O open  ^N new  ^P publish  ^R preview  ^T title  ^G tags  F7 check  F5 autosave  ^Space fix  ^Q quit"
