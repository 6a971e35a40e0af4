package commands

import (
	"github.com/spf13/pflag"
)

// The override helpers copy a flag's value into dst only when the flag was
// set on the command line, so config and environment values survive
// otherwise. Lookup errors cannot occur for flags the command registered.

func overrideString(fs *pflag.FlagSet, name string, dst *string) {
	if fs.Changed(name) {
		*dst, _ = fs.GetString(name)
	}
}

func overrideInt(fs *pflag.FlagSet, name string, dst *int) {
	if fs.Changed(name) {
		*dst, _ = fs.GetInt(name)
	}
}

func overrideUint32(fs *pflag.FlagSet, name string, dst *uint32) {
	if fs.Changed(name) {
		*dst, _ = fs.GetUint32(name)
	}
}

func overrideBool(fs *pflag.FlagSet, name string, dst *bool) {
	if fs.Changed(name) {
		*dst, _ = fs.GetBool(name)
	}
}

func overrideInts(fs *pflag.FlagSet, name string, dst *[]int) {
	if fs.Changed(name) {
		*dst, _ = fs.GetIntSlice(name)
	}
}
