package domain

// WIPPrefix marks a work-in-progress merge request title.
const WIPPrefix = "WIP: "
