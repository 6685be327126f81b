// Package netmonitor watches host network reachability and reports
// connected/disconnected transitions.
//
// No example repo in this project's retrieved dependency pack imports a
// Wi-Fi association or netlink library — this is a hosted Linux/Raspberry
// Pi deployment target, not the embedded ESP32 target the original
// firmware ran on, where Wi-Fi bring-up was part of the platform SDK. The
// monitor therefore polls reachability with the standard library's net
// package: an interface-up check plus a TCP dial probe against a
// configured reachability target (ordinarily the MQTT broker itself,
// since that is the one host this process actually needs to reach).
package netmonitor
