package config

import (
	"strings"
)

// MountOptions are the libfuse-style options the pure-Go drivers understand.
type MountOptions struct {
	FSName             string
	Subtype            string
	AllowOther         bool
	DefaultPermissions bool
	ReadOnly           bool
	Debug              bool

	// Ignored holds options that were recognized but have no effect on the
	// pure-Go drivers, and options that were not recognized at all.
	Ignored []string
}

// ParseMountArgs extracts mount options from a native argument vector. It
// understands "-o a,b=c", "-oa,b=c" and "-d". Positional arguments and other
// flags are skipped.
func ParseMountArgs(args []string) MountOptions {
	var opts MountOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-o" && i+1 < len(args):
			i++
			opts.apply(args[i])
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
			opts.apply(arg[2:])
		case arg == "-d" || arg == "--debug":
			opts.Debug = true
		}
	}
	return opts
}

func (o *MountOptions) apply(list string) {
	for _, opt := range strings.Split(list, ",") {
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "":
		case "fsname":
			o.FSName = value
		case "subtype":
			o.Subtype = value
		case "allow_other":
			o.AllowOther = true
		case "default_permissions":
			o.DefaultPermissions = true
		case "ro":
			o.ReadOnly = true
		case "rw":
			o.ReadOnly = false
		case "debug":
			o.Debug = true
		default:
			// auto_unmount among others: the pure-Go drivers unmount on exit themselves
			o.Ignored = append(o.Ignored, opt)
		}
	}
}

// Args renders the options back into "-o" form.
func (o MountOptions) Args() []string {
	var list []string
	if o.FSName != "" {
		list = append(list, "fsname="+o.FSName)
	}
	if o.Subtype != "" {
		list = append(list, "subtype="+o.Subtype)
	}
	if o.AllowOther {
		list = append(list, "allow_other")
	}
	if o.DefaultPermissions {
		list = append(list, "default_permissions")
	}
	if o.ReadOnly {
		list = append(list, "ro")
	}
	if len(list) == 0 {
		return nil
	}
	return []string{"-o", strings.Join(list, ",")}
}
