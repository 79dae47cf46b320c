package services

// Static per-platform selector tables (tier 1). Entries are in priority
// order: the high-value fields (name, email, resume) come first so a fill
// interrupted by a timeout still captured what recruiters actually read.
// Within an entry the first visible selector wins.

func selectorTableFor(platform Platform) []fieldSelectors {
	if table, ok := staticSelectorTables[platform]; ok {
		return table
	}
	return staticSelectorTables[PlatformGeneric]
}

var staticSelectorTables = map[Platform][]fieldSelectors{
	PlatformAshby: {
		{Logical: "full_name", Selectors: []string{
			"input[name='_systemfield_name']",
			"input[id='_systemfield_name']",
			"input[placeholder*='Full name']",
		}},
		{Logical: "email", Selectors: []string{
			"input[name='_systemfield_email']",
			"input[id='_systemfield_email']",
			"input[type='email']",
		}},
		{Logical: "resume", Selectors: []string{
			"input[name='_systemfield_resume']",
			"input[type='file']",
		}},
		{Logical: "phone", Selectors: []string{
			"input[name='_systemfield_phone']",
			"input[type='tel']",
		}},
		{Logical: "linkedin", Selectors: []string{
			"input[placeholder*='linkedin']",
			"input[aria-label*='LinkedIn']",
		}},
		{Logical: "location", Selectors: []string{
			"input[name='_systemfield_location']",
			"input[placeholder*='Location']",
		}},
	},
	PlatformGreenhouse: {
		{Logical: "first_name", Selectors: []string{
			"input[id='first_name']",
			"input[name='job_application[first_name]']",
			"input[autocomplete='given-name']",
		}},
		{Logical: "last_name", Selectors: []string{
			"input[id='last_name']",
			"input[name='job_application[last_name]']",
			"input[autocomplete='family-name']",
		}},
		{Logical: "email", Selectors: []string{
			"input[id='email']",
			"input[name='job_application[email]']",
			"input[type='email']",
		}},
		{Logical: "resume", Selectors: []string{
			"input[id='resume']",
			"input[data-source='attach'][type='file']",
			"input[type='file']",
		}},
		{Logical: "phone", Selectors: []string{
			"input[id='phone']",
			"input[name='job_application[phone]']",
			"input[type='tel']",
		}},
		{Logical: "linkedin", Selectors: []string{
			"input[name='job_application[answers_attributes][0][text_value]']",
			"input[aria-label*='LinkedIn']",
		}},
		{Logical: "cover_letter", Selectors: []string{
			"textarea[id='cover_letter_text']",
			"input[id='cover_letter']",
		}},
		{Logical: "location", Selectors: []string{
			"input[id='job_application_location']",
			"input[id='candidate-location']",
		}},
	},
	PlatformLever: {
		{Logical: "full_name", Selectors: []string{
			"input[name='name']",
			"input[placeholder='Full name']",
		}},
		{Logical: "email", Selectors: []string{
			"input[name='email']",
			"input[type='email']",
		}},
		{Logical: "resume", Selectors: []string{
			"input[name='resume']",
			"input[type='file']",
		}},
		{Logical: "phone", Selectors: []string{
			"input[name='phone']",
			"input[type='tel']",
		}},
		{Logical: "current_company", Selectors: []string{
			"input[name='org']",
			"input[placeholder='Current company']",
		}},
		{Logical: "linkedin", Selectors: []string{
			"input[name='urls[LinkedIn]']",
		}},
		{Logical: "github", Selectors: []string{
			"input[name='urls[GitHub]']",
		}},
		{Logical: "portfolio", Selectors: []string{
			"input[name='urls[Portfolio]']",
			"input[name='urls[Other]']",
		}},
		{Logical: "cover_letter", Selectors: []string{
			"textarea[name='comments']",
		}},
	},
	PlatformWorkable: {
		{Logical: "first_name", Selectors: []string{
			"input[name='firstname']",
			"input[id='firstname']",
			"input[data-ui='firstname']",
		}},
		{Logical: "last_name", Selectors: []string{
			"input[name='lastname']",
			"input[id='lastname']",
			"input[data-ui='lastname']",
		}},
		{Logical: "email", Selectors: []string{
			"input[name='email']",
			"input[type='email']",
		}},
		{Logical: "resume", Selectors: []string{
			"input[data-ui='resume'] input[type='file']",
			"input[id='resume']",
			"input[type='file']",
		}},
		{Logical: "phone", Selectors: []string{
			"input[name='phone']",
			"input[type='tel']",
		}},
		{Logical: "cover_letter", Selectors: []string{
			"textarea[name='cover_letter']",
			"textarea[data-ui='cover-letter']",
		}},
	},
	PlatformGeneric: {
		{Logical: "full_name", Selectors: []string{
			"input[name='name']",
			"input[name='full_name']",
			"input[name='fullName']",
			"input[placeholder*='Full Name']",
			"input[aria-label*='Name']",
		}},
		{Logical: "first_name", Selectors: []string{
			"input[name='first_name']",
			"input[name='firstName']",
			"input[id='first_name']",
			"input[placeholder*='First']",
		}},
		{Logical: "last_name", Selectors: []string{
			"input[name='last_name']",
			"input[name='lastName']",
			"input[id='last_name']",
			"input[placeholder*='Last']",
		}},
		{Logical: "email", Selectors: []string{
			"input[type='email']",
			"input[name='email']",
			"input[name='email_address']",
			"input[placeholder*='Email']",
		}},
		{Logical: "resume", Selectors: []string{
			"input[type='file'][name*='resume']",
			"input[type='file'][accept*='pdf']",
			"input[type='file']",
		}},
		{Logical: "phone", Selectors: []string{
			"input[type='tel']",
			"input[name='phone']",
			"input[name='phone_number']",
			"input[placeholder*='Phone']",
		}},
		{Logical: "location", Selectors: []string{
			"input[name='location']",
			"input[name='city']",
			"input[placeholder*='Location']",
		}},
		{Logical: "linkedin", Selectors: []string{
			"input[name*='linkedin']",
			"input[placeholder*='linkedin']",
		}},
		{Logical: "portfolio", Selectors: []string{
			"input[name*='website']",
			"input[name*='portfolio']",
		}},
	},
}
