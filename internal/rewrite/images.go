package rewrite

// renderImage applies spec.md §4.4's image policy: strip, else
// make-absolute-if-relative, else as-is.
func renderImage(src []byte, im linkEvent, opts ImageOptions) string {
	if opts.Strip {
		return ""
	}
	if opts.MakeAbsolute && isRelative(im.dest) && opts.BaseURL != "" {
		return "![" + im.text + "](" + joinBaseURL(opts.BaseURL, im.dest) + ")"
	}
	return "![" + im.text + "](" + im.dest + ")"
}

// imageStandsAlone reports whether the image at [start,end) is the only
// non-whitespace content on its line, so a strip can also swallow the line's
// trailing newline per spec.md §4.4.
func imageStandsAlone(src []byte, start, end int) bool {
	i := start - 1
	for i >= 0 && (src[i] == ' ' || src[i] == '\t') {
		i--
	}
	if i >= 0 && src[i] != '\n' {
		return false
	}
	j := end
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	return j >= len(src) || src[j] == '\n'
}
