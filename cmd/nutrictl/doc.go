// Command nutrictl is the desk-side companion of the registry service. It
// shares configuration and storage with nutrireg-api and can scan cards,
// register patients, list consultations and export spreadsheets without
// going through HTTP.
package main
