package services

import "time"

// Services defined in this package:
// - AuthService: registration, login and token refresh
// - UserService: member administration (approval, roles, profiles)
// - EventService: event lifecycle, detail assembly and track files
// - ParticipationService: joins, leaves and manual roster entries
// - PostService: the club notice board

// timeNow is a test seam for clock-dependent checks
var timeNow = time.Now
